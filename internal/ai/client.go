package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrEmptyResponse 模型返回了空文本
var ErrEmptyResponse = errors.New("ai: empty response")

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	// JSON 要求模型以 JSON 输出（provider 支持时）
	JSON bool
}

// Client is a provider-agnostic interface for the LLM operations we need.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// FactoryConfig captures the inputs required to construct a provider client.
type FactoryConfig struct {
	Provider string

	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string

	GeminiKey string
	OpenAIKey string

	// BaseURL 仅用于测试或自建网关覆盖默认地址
	BaseURL string
}

// ProviderFactory implements provider-specific Client creation.
type ProviderFactory func(FactoryConfig) (Client, error)

var (
	mu         sync.RWMutex
	providers  = map[string]ProviderFactory{}
	defaultKey = "gemini"
)

// RegisterProvider registers a provider factory under one or more names.
func RegisterProvider(name string, factory ProviderFactory, aliases ...string) {
	mu.Lock()
	defer mu.Unlock()

	all := append([]string{name}, aliases...)
	for _, n := range all {
		providers[strings.ToLower(n)] = factory
	}
}

// NewClient returns a provider-agnostic AI client.
func NewClient(cfg FactoryConfig) (Client, error) {
	providerName := cfg.Provider
	if strings.TrimSpace(providerName) == "" {
		providerName = defaultKey
	}

	mu.RLock()
	factory := providers[strings.ToLower(providerName)]
	mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("ai: provider %q not registered", providerName)
	}
	return factory(cfg)
}

// Merge 以调用方传入的 opts 为准，空字段回落到 FactoryConfig 中的默认值
func Merge(cfg FactoryConfig, opts Options) Options {
	if opts.Model == "" {
		opts.Model = cfg.Model
	}
	if opts.Temperature == 0 {
		opts.Temperature = cfg.Temperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = cfg.MaxTokens
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = cfg.SystemPrompt
	}
	return opts
}
