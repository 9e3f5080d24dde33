package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
)

const systemPrompt = `You are an expert software engineer that writes production-ready application code.
Reply with a single JSON object and nothing else, using this shape:
{"files":[{"name":"<file name>","content":"<file content>","type":"<language>"}],"description":"<what was built>","instructions":"<how to use it>"}`

// ModelProvider asks an OpenAI-compatible chat endpoint for code and parses the reply.
// A reply without usable JSON becomes a placeholder result, so only transport errors fail.
type ModelProvider struct {
	client *openai.Client
	model  string
}

func NewModelProvider(baseURL, apiKey, model string, timeout time.Duration) *ModelProvider {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &ModelProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *ModelProvider) Name() string { return "fallback" }

func (p *ModelProvider) Generate(ctx context.Context, in Request) (*models.GenerationResult, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(in)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fallback model call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("fallback model returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	if res, ok := ExtractResult(raw); ok {
		return res, nil
	}
	log.WithFields(log.Fields{"model": p.model, "reply_len": len(raw)}).
		Warn("[provider][fallback] reply had no parseable JSON, using placeholder")
	return Placeholder(in), nil
}

func userPrompt(in Request) string {
	fw := in.Framework
	if fw == "" {
		fw = models.FrameworkReact
	}
	return fmt.Sprintf("Generate a %s using %s.\n\nRequirements:\n%s", in.Type, fw, in.Prompt)
}
