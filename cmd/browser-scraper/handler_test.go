package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	text string
	err  error
	got  string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	f.got = url
	return f.text, f.err
}

func post(t *testing.T, h *handler, body string) (int, extractResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	h.register(e)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(w, req)

	var resp extractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestExtractHandler(t *testing.T) {
	r := &fakeRenderer{text: "  Headline \r\n\r\n\r\n\r\nFirst   paragraph.  \n"}
	code, resp := post(t, newHandler(r, 2), `{"url":"https://news.test/story","maxChars":12}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.OK)
	assert.Equal(t, "Headline\n\nFi…", resp.Text)
	assert.Equal(t, "https://news.test/story", r.got)
}

func TestExtractHandlerRejectsBadInput(t *testing.T) {
	h := newHandler(&fakeRenderer{text: "x"}, 1)
	for _, body := range []string{`not json`, `{"url":""}`, `{"url":"file:///etc/passwd"}`, `{"url":"/relative"}`} {
		code, resp := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.False(t, resp.OK)
		assert.NotEmpty(t, resp.Error)
	}
}

func TestExtractHandlerReportsRenderFailures(t *testing.T) {
	_, resp := post(t, newHandler(&fakeRenderer{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}, 1), `{"url":"https://gone.test"}`)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "ERR_NAME_NOT_RESOLVED")

	_, resp = post(t, newHandler(&fakeRenderer{text: " \n "}, 1), `{"url":"https://blank.test"}`)
	assert.Equal(t, "empty content", resp.Error)
}

func TestTrimWhitespace(t *testing.T) {
	assert.Equal(t, "a b\n\nc", trimWhitespace(" a   b \n\n\n\n c "))
}

// 提取脚本必须随普通平台一起编译，并且是可直接 Evaluate 的立即执行表达式
func TestExtractScriptIsSelfInvoking(t *testing.T) {
	script := strings.TrimSpace(extractJS)
	assert.True(t, strings.HasPrefix(script, "(function"))
	assert.True(t, strings.HasSuffix(script, "})();"))
	assert.Contains(t, script, "[itemprop=articleBody]")
}
