package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultMaxChars = 2000
	maxMaxChars     = 8000
)

type extractRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type extractResponse struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

type renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

type handler struct {
	r renderer
	// 限制同时打开的标签页数
	tabs chan struct{}
}

func newHandler(r renderer, maxTabs int) *handler {
	if maxTabs <= 0 {
		maxTabs = 1
	}
	return &handler{r: r, tabs: make(chan struct{}, maxTabs)}
}

func (h *handler) register(e *gin.Engine) {
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	e.POST("/extract", h.extract)
}

func (h *handler) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Error: "invalid json"})
		return
	}
	if err := validateURL(req.URL); err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Error: err.Error()})
		return
	}
	if req.MaxChars <= 0 || req.MaxChars > maxMaxChars {
		req.MaxChars = defaultMaxChars
	}

	select {
	case h.tabs <- struct{}{}:
		defer func() { <-h.tabs }()
	case <-c.Request.Context().Done():
		c.JSON(http.StatusServiceUnavailable, extractResponse{Error: "request cancelled"})
		return
	}

	text, err := h.r.Render(c.Request.Context(), req.URL)
	if err != nil {
		zap.L().Warn("extract failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusOK, extractResponse{Error: err.Error()})
		return
	}

	text = trimWhitespace(text)
	if text == "" {
		c.JSON(http.StatusOK, extractResponse{Error: "empty content"})
		return
	}
	c.JSON(http.StatusOK, extractResponse{OK: true, Text: truncateRunes(text, req.MaxChars)})
}

var (
	errURLRequired = errors.New("url is required")
	errURLInvalid  = errors.New("url must be an absolute http(s) address")
)

// validateURL 只接受 http(s) 绝对地址
func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errURLRequired
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errURLInvalid
	}
	return nil
}

func trimWhitespace(s string) string {
	// 简单的空白清理，避免过多连续空行
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
