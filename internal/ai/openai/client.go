package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/ai"
	"github.com/LJTian/FactHub/internal/webclient"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	retryAttempts  = 3
)

func init() {
	ai.RegisterProvider("openai", newClient, "gpt")
}

type client struct {
	cfg        ai.FactoryConfig
	baseURL    string
	httpClient *http.Client
}

func newClient(cfg ai.FactoryConfig) (ai.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: webclient.NewDefault(120 * time.Second),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *client) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	opts = ai.Merge(c.cfg, opts)

	reqBody := chatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.SystemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "user", Content: prompt})
	if opts.JSON {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIKey)

	status, body, err := webclient.DoRequestWithRetry(ctx, c.httpClient, req, retryAttempts, 0)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	if status != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("openai: API error: %s (type: %s, code: %s)",
				errResp.Error.Message, errResp.Error.Type, errResp.Error.Code)
		}
		return "", fmt.Errorf("openai: API error: status %d", status)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}
