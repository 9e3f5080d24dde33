package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

// HTTPProvider calls the hosted code generation API. It never retries.
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPProvider(endpoint, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Name() string { return "primary" }

type codegenRequest struct {
	Prompt    string `json:"prompt"`
	Type      string `json:"type"`
	Framework string `json:"framework"`
}

func (p *HTTPProvider) Generate(ctx context.Context, in Request) (*models.GenerationResult, error) {
	if p.endpoint == "" {
		return nil, errors.New("primary provider endpoint is not configured")
	}
	body, err := json.Marshal(codegenRequest{
		Prompt:    in.Prompt,
		Type:      string(in.Type),
		Framework: string(in.Framework),
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("codegen request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("codegen endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var out models.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode codegen response: %w", err)
	}
	if len(out.Files) == 0 {
		return nil, errors.New("codegen endpoint returned no files")
	}
	return &out, nil
}
