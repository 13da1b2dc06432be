package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 外部接口响应体上限，防止异常大响应拖垮进程
const DefaultMaxBodyBytes = 1 << 20

// NewDefault returns an HTTP client with sane timeouts.
func NewDefault(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Do 执行请求并按上限读取响应体，返回状态码与内容，供 DoWithRetry 的 AttemptFunc 使用。
// 请求体需可重放（req.GetBody 非空）才能在重试时复用。
func Do(client *http.Client, req *http.Request, maxBytes int64) (int, []byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return 0, nil, fmt.Errorf("webclient: rewind body: %w", err)
		}
		req.Body = body
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("webclient: read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// DoRequestWithRetry 组合 Do 与 DoWithRetry 的常用写法
func DoRequestWithRetry(ctx context.Context, client *http.Client, req *http.Request, attempts int, maxBytes int64) (int, []byte, error) {
	return DoWithRetry(ctx, attempts, time.Second, func() (int, []byte, error) {
		return Do(client, req, maxBytes)
	})
}
