package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LJTian/FactHub/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := ai.NewClient(ai.FactoryConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "API key not configured")
}

func TestGenerateCallsGenerateContent(t *testing.T) {
	var (
		path string
		key  string
		got  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  VERDICT: False \n"}]}}]}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(ai.FactoryConfig{Provider: "google", GeminiKey: "k", Model: "gemini-test", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "check this", ai.Options{MaxTokens: 256, SystemPrompt: "be careful", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "VERDICT: False", out)

	assert.True(t, strings.HasSuffix(path, "/models/gemini-test:generateContent"), path)
	assert.Equal(t, "k", key)

	body, _ := json.Marshal(got)
	assert.Contains(t, string(body), "check this")
	assert.Contains(t, got, "systemInstruction")
	gen, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %s", body)
	assert.EqualValues(t, 256, gen["maxOutputTokens"])
	assert.Equal(t, "application/json", gen["responseMimeType"])
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(ai.FactoryConfig{Provider: "gemini", GeminiKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "x", ai.Options{})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}
