package main

import (
	"context"
	"log"
	"os"

	"github.com/LJTian/FactHub/internal/ai"
	_ "github.com/LJTian/FactHub/internal/ai/providers"
	"github.com/LJTian/FactHub/internal/api"
	"github.com/LJTian/FactHub/internal/auth"
	"github.com/LJTian/FactHub/internal/collector"
	"github.com/LJTian/FactHub/internal/config"
	"github.com/LJTian/FactHub/internal/extract"
	"github.com/LJTian/FactHub/internal/factcheck"
	"github.com/LJTian/FactHub/internal/logging"
	"github.com/LJTian/FactHub/internal/processor"
	"github.com/LJTian/FactHub/internal/scheduler"
	"github.com/LJTian/FactHub/internal/search"
	"github.com/LJTian/FactHub/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// config.Load 自身会打日志，日志级别需先于它读取
	logger, err := logging.Init(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		logger.Fatal("init store failed", zap.Error(err))
	}

	feeds, err := collector.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		logger.Fatal("load feeds failed", zap.Error(err))
	}
	// 确保各个订阅源存在
	for _, f := range feeds {
		if _, err := store.EnsureFeedSource(context.Background(), f); err != nil {
			logger.Fatal("ensure feed source failed", zap.String("source", f.Code), zap.Error(err))
		}
	}

	// 按订阅源各自的更新频率配置采集周期
	s, err := scheduler.New(scheduler.JobsFromFeeds(feeds, cfg.CronSpec), processor.NewSimpleProcessor(), store)
	if err != nil {
		logger.Fatal("init scheduler failed", zap.Error(err))
	}
	s.Start()
	defer s.Stop()

	checker := factcheck.NewService(newLLM(cfg), newSearch(cfg), newExtractor(cfg), store, store, factcheck.Options{
		ResultsPerQuery: cfg.SearchResults,
		CacheTTL:        cfg.FactCheckCacheTTL,
	})

	authSvc := auth.NewService(auth.NewGormStore(store.DB), cfg.JWTSecret, cfg.JWTTTL)

	// API
	r := gin.Default()
	apiServer := api.NewServer(authSvc, checker, store, s, api.Options{
		AuthCookie:    cfg.AuthCookie,
		CookieSecure:  cfg.CookieSecure,
		FactCheckRate: cfg.FactCheckRate,
		CORSOrigins:   cfg.CORSOrigins,
	})
	apiServer.RegisterRoutes(r)

	// 若配置了前端目录，则托管 SPA 静态文件并做 fallback
	api.MountSPA(r, cfg.WebRoot)

	addr := ":" + cfg.AppPort
	logger.Info("starting api server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Error("server exit", zap.Error(err))
	}
}

// newLLM 未配置密钥时返回 nil，核查接口会返回 503
func newLLM(cfg *config.Config) ai.Client {
	fc := ai.FactoryConfig{
		Provider:  cfg.AIProvider,
		GeminiKey: cfg.GeminiAPIKey,
		OpenAIKey: cfg.OpenAIAPIKey,
	}
	switch cfg.AIProvider {
	case "openai", "gpt":
		fc.Model = cfg.OpenAIModel
	default:
		fc.Model = cfg.GeminiModel
	}
	client, err := ai.NewClient(fc)
	if err != nil {
		zap.L().Warn("AI provider unavailable, fact-checking disabled", zap.String("provider", cfg.AIProvider), zap.Error(err))
		return nil
	}
	return client
}

func newSearch(cfg *config.Config) search.Client {
	if cfg.SearchAPIKey == "" || cfg.SearchEngineID == "" {
		zap.L().Warn("web search not configured, verdicts will rely on the model only")
		return nil
	}
	return search.NewGoogleClient(cfg.SearchAPIKey, cfg.SearchEngineID)
}

func newExtractor(cfg *config.Config) factcheck.Extractor {
	switch {
	case cfg.ExtractorURL != "":
		return extract.NewClient(cfg.ExtractorURL)
	case cfg.ExtractFallback:
		return &extract.CollyExtractor{}
	default:
		return nil
	}
}
