package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LJTian/FactHub/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsChatCompletion(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  VERDICT: True \n"}}]}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(ai.FactoryConfig{Provider: "openai", OpenAIKey: "k", BaseURL: srv.URL, SystemPrompt: "be careful"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "check this", ai.Options{Temperature: 0.2, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "VERDICT: True", out)

	assert.Equal(t, defaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "check this", got.Messages[1].Content)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
}

func TestGenerateDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(ai.FactoryConfig{Provider: "openai", OpenAIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "x", ai.Options{})
	assert.ErrorContains(t, err, "bad key")
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(ai.FactoryConfig{Provider: "gpt", OpenAIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "x", ai.Options{})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}
