package cleaner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"clearfeed/config"
)

const (
	GroqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel = "llama-3.1-8b-instant"
)

// OpenAICompleter implements Completer against any OpenAI-compatible chat completions API.
// Groq is the default endpoint.
// Request: {"model": "...", "messages": [{"role": "system", ...}, {"role": "user", ...}]}
// Response: {"choices": [{"message": {"content": "..."}}]}
type OpenAICompleter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAICompleter creates a completer. Empty model and endpoint fall back to Groq defaults.
func NewOpenAICompleter(apiKey, model, endpoint string, client *http.Client) *OpenAICompleter {
	if model == "" {
		model = DefaultGroqModel
	}
	if endpoint == "" {
		endpoint = GroqEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: config.AIRequestTimeout}
	}
	return &OpenAICompleter{apiKey: apiKey, model: model, endpoint: endpoint, client: client}
}

func (o *OpenAICompleter) ModelName() string { return o.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: config.AITemperature,
		MaxTokens:   config.AIMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completion error: status %d: %s", resp.StatusCode, string(b))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding chat completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
