// Package openai provides a Completer backed by an OpenAI-compatible /chat/completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/chatlat/internal/logging"
	"github.com/mwiater/chatlat/internal/providers"
)

// Provider implements providers.Completer over HTTP.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	debug   bool
}

// Options configures a Provider.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Debug   bool
}

// New constructs a Provider. Timeout bounds each HTTP exchange; callers may
// impose a tighter deadline through the request context.
func New(opts Options) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment},
		},
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:  opts.APIKey,
		debug:   opts.Debug,
	}
}

type chatRequest struct {
	Model     string                  `json:"model"`
	Messages  []providers.ChatMessage `json:"messages"`
	MaxTokens int                     `json:"max_tokens,omitempty"`
	Stream    bool                    `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues one non-streaming chat completion.
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
	if strings.TrimSpace(req.Model) == "" {
		return providers.Completion{}, fmt.Errorf("openai: model is required")
	}

	payload := chatRequest{
		Model:     req.Model,
		Messages:  sanitizeMessages(req.Messages),
		MaxTokens: req.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.Completion{}, err
	}

	endpoint := p.baseURL + "/chat/completions"
	if p.debug {
		logging.LogRequest("CHATLAT->API", endpoint, req.Model, body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.Completion{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return providers.Completion{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Completion{}, err
	}
	if p.debug {
		logging.LogRequest("API->CHATLAT", endpoint, req.Model, raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providers.Completion{}, &providers.APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       errorMessage(raw),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return providers.Completion{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return providers.Completion{}, fmt.Errorf("openai: chat response contained no choices")
	}

	model := parsed.Model
	if model == "" {
		model = req.Model
	}
	return providers.Completion{Model: model, Content: parsed.Choices[0].Message.Content}, nil
}

// errorMessage prefers the structured {"error":{"message":...}} body.
func errorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error.Message) != "" {
		return strings.TrimSpace(payload.Error.Message)
	}
	return strings.TrimSpace(string(body))
}

func sanitizeMessages(messages []providers.ChatMessage) []providers.ChatMessage {
	sanitized := make([]providers.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role := strings.TrimSpace(msg.Role)
		content := strings.TrimSpace(msg.Content)
		if role == "" {
			role = "user"
		}
		if content == "" {
			continue
		}
		sanitized = append(sanitized, providers.ChatMessage{Role: role, Content: content})
	}
	return sanitized
}
