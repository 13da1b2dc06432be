package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	AppPort string
	WebRoot string

	PostgresDSN string
	RedisAddr   string

	// 订阅源默认采集周期；FeedsFile 为空时使用内置的事实核查机构列表
	CronSpec  string
	FeedsFile string

	JWTSecret    string
	JWTTTL       time.Duration
	AuthCookie   string
	CookieSecure bool
	CORSOrigins  []string

	AIProvider   string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	SearchAPIKey   string
	SearchEngineID string
	SearchResults  int

	// 正文抽取服务（cmd/browser-scraper）；为空且未开启 ExtractFallback 时不做正文补充
	ExtractorURL    string
	ExtractFallback bool

	FactCheckRate     int
	FactCheckCacheTTL time.Duration

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		WebRoot:     getEnv("WEB_ROOT", ""),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=facthub password=facthub dbname=facthub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6380"),
		CronSpec:    getEnv("CRON_SPEC", "*/30 * * * *"),
		FeedsFile:   getEnv("FEEDS_FILE", ""),

		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		JWTTTL:       getEnvDuration("JWT_TTL", 24*time.Hour),
		AuthCookie:   getEnv("AUTH_COOKIE", "fh_token"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		AIProvider:   strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SearchAPIKey:   getEnv("SEARCH_API_KEY", ""),
		SearchEngineID: getEnv("SEARCH_ENGINE_ID", ""),
		SearchResults:  getEnvInt("SEARCH_RESULTS", 5),

		ExtractorURL:    getEnv("EXTRACTOR_URL", ""),
		ExtractFallback: getEnvBool("EXTRACT_FALLBACK", false),

		FactCheckRate:     getEnvInt("FACTCHECK_RATE", 20),
		FactCheckCacheTTL: getEnvDuration("FACTCHECK_CACHE_TTL", 6*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.SearchResults < 1 || cfg.SearchResults > 10 {
		cfg.SearchResults = 5
	}

	if cfg.JWTSecret == "change-me" {
		zap.L().Warn("JWT_SECRET is not set, using the insecure default")
	}

	zap.L().Info("config loaded",
		zap.String("port", cfg.AppPort),
		zap.String("cron", cfg.CronSpec),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("search_configured", cfg.SearchAPIKey != "" && cfg.SearchEngineID != ""),
		zap.Bool("extractor", cfg.ExtractorURL != "" || cfg.ExtractFallback),
	)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt 解析失败或非正数时返回默认值
func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// getEnvList 逗号分隔，忽略空项
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
