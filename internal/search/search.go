package search

import (
	"context"
	"net/url"
	"strings"
)

// Result 是一条网页搜索结果
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

// Client 抽象网页搜索 API
type Client interface {
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// Dedupe 按规范化后的 URL 去重，保留首次出现的顺序
func Dedupe(results []Result) []Result {
	out := make([]Result, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		key := NormalizeURL(r.URL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// NormalizeURL 小写 host、去掉 www.、fragment、utm_* 参数与末尾斜杠；无法解析时返回空串
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}

	path := strings.TrimRight(u.Path, "/")
	out := host + path
	if enc := q.Encode(); enc != "" {
		out += "?" + enc
	}
	return out
}
