package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/LJTian/FactHub/internal/ai"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

func init() {
	ai.RegisterProvider("gemini", newClient, "google")
}

type client struct {
	cfg   ai.FactoryConfig
	genai *genai.Client
}

func newClient(cfg ai.FactoryConfig) (ai.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &client{cfg: cfg, genai: gc}, nil
}

func (c *client) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	opts = ai.Merge(c.cfg, opts)

	gcfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		gcfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.SystemPrompt != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.JSON {
		gcfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.genai.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), gcfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}
