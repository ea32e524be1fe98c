package cleaner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clearfeed/config"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const DefaultCohereModel = "command-r-08-2024"

// CohereCompleter implements Completer using the Cohere Chat API (v2)
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereCompleter struct {
	client *cohereclient.Client
	model  string
}

// NewCohereCompleter creates a Cohere-backed completer. An empty baseURL uses the public API.
func NewCohereCompleter(apiKey, model, baseURL string) *CohereCompleter {
	if model == "" {
		model = DefaultCohereModel
	}
	// Force HTTP/1.1 to avoid HTTP/2 protocol errors from the API gateway
	httpClient := &http.Client{
		Timeout: config.AIRequestTimeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	var client *cohereclient.Client
	if baseURL != "" {
		client = cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
			cohereclient.WithBaseURL(baseURL),
		)
	} else {
		client = cohereclient.NewClient(
			cohereclient.WithToken(apiKey),
			cohereclient.WithHTTPClient(httpClient),
		)
	}
	return &CohereCompleter{client: client, model: model}
}

func (c *CohereCompleter) ModelName() string { return c.model }

func (c *CohereCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.V2.Chat(ctx, &cohere.V2ChatRequest{
		Model: c.model,
		Messages: cohere.ChatMessages{
			{
				Role:   "system",
				System: &cohere.SystemMessageV2{Content: &cohere.SystemMessageV2Content{String: system}},
			},
			{
				Role: "user",
				User: &cohere.UserMessageV2{Content: &cohere.UserMessageV2Content{String: user}},
			},
		},
		Temperature: cohere.Float64(config.AITemperature),
		MaxTokens:   cohere.Int(config.AIMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Message == nil {
		return "", errors.New("cohere chat returned empty response")
	}

	var sb strings.Builder
	for _, item := range resp.Message.Content {
		if item != nil && item.Text != nil {
			sb.WriteString(item.Text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("cohere chat returned no text")
	}
	return sb.String(), nil
}

// NewCompleterFromConfig picks a backend from the configured keys.
// Cohere is preferred when both keys are present; nil means rewriting is disabled.
func NewCompleterFromConfig(cfg config.Config) Completer {
	if !cfg.AIEnabled {
		return nil
	}
	if cfg.CohereAPIKey != "" {
		return NewCohereCompleter(cfg.CohereAPIKey, cfg.AIModel, "")
	}
	if cfg.GroqAPIKey != "" {
		return NewOpenAICompleter(cfg.GroqAPIKey, cfg.AIModel, "", nil)
	}
	return nil
}
