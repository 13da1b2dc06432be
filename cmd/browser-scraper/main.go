package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/LJTian/FactHub/internal/logging"
	"github.com/chromedp/chromedp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.Init(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// 整个进程复用一个 headless 浏览器，每个请求开独立标签页
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// 预热浏览器，避免首个请求耗时过长
	if err := chromedp.Run(browserCtx); err != nil {
		logger.Warn("warmup chromedp failed", zap.Error(err))
	}

	r := &chromeRenderer{
		browserCtx: browserCtx,
		timeout:    time.Duration(getEnvInt("EXTRACT_TIMEOUT_SECONDS", 20)) * time.Second,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	newHandler(r, getEnvInt("MAX_TABS", 4)).register(engine)

	addr := ":" + getEnv("PORT", "4000")
	logger.Info("browser-scraper listening", zap.String("addr", addr))
	if err := engine.Run(addr); err != nil {
		logger.Fatal("http server error", zap.Error(err))
	}
}

// chromeRenderer 用 chromedp 打开页面并执行正文抽取脚本
type chromeRenderer struct {
	browserCtx context.Context
	timeout    time.Duration
}

func (c *chromeRenderer) Render(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()

	// 请求方断开时一并取消
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var text string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(extractJS, &text),
	)
	return text, err
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
