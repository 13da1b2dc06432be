// Package extract 抓取网页正文：优先调用 browser-scraper 服务，未部署时用 colly 直接抓取段落。
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/webclient"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	defaultMaxChars   = 2000
	clientTimeout     = 30 * time.Second
	collyTimeout      = 10 * time.Second
	minParagraphChars = 40
	maxBodyBytes      = 2 << 20 // 2MB
)

var ErrEmptyContent = errors.New("extract: empty content")

type extractRequest struct {
	URL      string `json:"url"`
	MaxChars int    `json:"maxChars"`
}

type extractResponse struct {
	OK    bool   `json:"ok"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client 调用 cmd/browser-scraper 的 /extract 接口
type Client struct {
	Endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: webclient.NewDefault(clientTimeout),
	}
}

func (c *Client) Extract(ctx context.Context, url string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	body, err := json.Marshal(extractRequest{URL: url, MaxChars: maxChars})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, respBody, err := webclient.Do(c.httpClient, req, maxBodyBytes)
	if err != nil {
		return "", fmt.Errorf("extract: %s: %w", url, err)
	}
	var out extractResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("extract: decode response (status %d): %w", status, err)
	}
	if !out.OK {
		return "", fmt.Errorf("extract: %s: %s", url, out.Error)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", ErrEmptyContent
	}
	return out.Text, nil
}

// CollyExtractor 无浏览器的兜底实现：抓取页面后拼接足够长的段落
type CollyExtractor struct {
	UserAgent string
}

func (e *CollyExtractor) Extract(ctx context.Context, url string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	ua := e.UserAgent
	if ua == "" {
		ua = "FactHubBot/1.0"
	}

	c := colly.NewCollector(
		colly.UserAgent(ua),
		colly.MaxBodySize(maxBodyBytes),
	)
	c.SetRequestTimeout(collyTimeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		pieces []string
		total  int
	)
	c.OnHTML("body", func(el *colly.HTMLElement) {
		root := el.DOM
		// 优先正文容器，找不到再全页兜底
		if art := el.DOM.Find("article").First(); art.Length() > 0 {
			root = art
		}
		root.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			t := strings.Join(strings.Fields(s.Text()), " ")
			if len(t) < minParagraphChars {
				return true
			}
			pieces = append(pieces, t)
			total += len(t)
			return total < maxChars
		})
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("extract: visit %s: %w", url, err)
	}

	text := strings.Join(pieces, "\n\n")
	if text == "" {
		return "", ErrEmptyContent
	}
	if rs := []rune(text); len(rs) > maxChars {
		text = string(rs[:maxChars]) + "…"
	}
	return text, nil
}
