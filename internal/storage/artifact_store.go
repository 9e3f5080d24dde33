// Package storage writes generated files to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/the-lucky-clover/agentcy-one/internal/config"
	"github.com/the-lucky-clover/agentcy-one/internal/metrics"
	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// ObjectPutter is the subset of *minio.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type ArtifactStore interface {
	// Put writes content under <namespace>/<requestID>/<name> and returns its descriptor.
	Put(ctx context.Context, requestID string, file models.GeneratedFile) (models.FileDescriptor, error)
}

type artifactStore struct {
	client    ObjectPutter
	bucket    string
	namespace string
	publicURL string
}

func NewArtifactStore(client ObjectPutter, bucket, namespace, publicBaseURL string) ArtifactStore {
	return &artifactStore{
		client:    client,
		bucket:    bucket,
		namespace: strings.Trim(namespace, "/"),
		publicURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// NewMinioClient dials the configured endpoint and makes sure the bucket exists.
func NewMinioClient(ctx context.Context, cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}
	return client, nil
}

func (s *artifactStore) Put(ctx context.Context, requestID string, file models.GeneratedFile) (models.FileDescriptor, error) {
	if cleanName(file.Name) == "" {
		return models.FileDescriptor{}, fmt.Errorf("invalid file name %q", file.Name)
	}
	key := ObjectKey(s.namespace, requestID, file.Name)
	ct := ContentType(file.Name)

	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(file.Content), int64(len(file.Content)),
		minio.PutObjectOptions{ContentType: ct})
	if err != nil {
		return models.FileDescriptor{}, fmt.Errorf("put %s: %w", key, err)
	}
	metrics.ArtifactsStored.Inc()
	return models.FileDescriptor{
		Name:        file.Name,
		URL:         s.publicURL + "/" + key,
		ContentType: ct,
	}, nil
}

// ObjectKey joins namespace, request id and file name. Leading slashes and ".." segments
// in the file name are dropped so a key never escapes its request prefix.
func ObjectKey(namespace, requestID, name string) string {
	clean := cleanName(name)
	if namespace == "" {
		return requestID + "/" + clean
	}
	return namespace + "/" + requestID + "/" + clean
}

func cleanName(name string) string {
	return strings.TrimLeft(path.Clean("/"+name), "/")
}

var contentTypes = map[string]string{
	".tsx":    "text/typescript; charset=utf-8",
	".ts":     "text/typescript; charset=utf-8",
	".jsx":    "text/javascript; charset=utf-8",
	".js":     "text/javascript; charset=utf-8",
	".mjs":    "text/javascript; charset=utf-8",
	".vue":    "text/x-vue; charset=utf-8",
	".svelte": "text/x-svelte; charset=utf-8",
	".css":    "text/css; charset=utf-8",
	".html":   "text/html; charset=utf-8",
	".json":   "application/json",
	".md":     "text/markdown; charset=utf-8",
	".sql":    "application/sql",
}

// ContentType maps a file name to the Content-Type stored with the object.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "text/plain; charset=utf-8"
}
