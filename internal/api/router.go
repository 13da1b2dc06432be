package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/FactHub/internal/auth"
	"github.com/LJTian/FactHub/internal/factcheck"
	"github.com/LJTian/FactHub/internal/scheduler"
	"github.com/LJTian/FactHub/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// FactChecker 核查服务，由 factcheck.Service 实现
type FactChecker interface {
	Check(ctx context.Context, userID, claim string) (*factcheck.Result, error)
	History(ctx context.Context, userID string, limit int) ([]factcheck.Result, error)
	Get(ctx context.Context, userID, id string) (*factcheck.Result, error)
	Delete(ctx context.Context, userID, id string) error
}

// FeedStore 订阅源只读查询，由 storage.Store 实现
type FeedStore interface {
	ListFeedSources(ctx context.Context) ([]storage.FeedSource, error)
	ListItems(ctx context.Context, f storage.ItemFilter) ([]storage.FeedItem, error)
	ListPublishedDates(ctx context.Context, source string, limit int) ([]string, error)
}

// Refresher 手动触发采集，由 scheduler.Scheduler 实现
type Refresher interface {
	RunOnce(ctx context.Context) []scheduler.RunResult
	RunSource(ctx context.Context, code string) (scheduler.RunResult, error)
	Sources() []string
}

type Options struct {
	AuthCookie   string
	CookieSecure bool
	// 每个用户在 RateWindow 内最多提交的核查次数
	FactCheckRate int
	RateWindow    time.Duration
	CORSOrigins   []string
}

type Server struct {
	auth      *auth.Service
	checker   FactChecker
	feeds     FeedStore
	refresher Refresher
	opts      Options
	limiter   *RateLimiter
}

func NewServer(authSvc *auth.Service, checker FactChecker, feeds FeedStore, refresher Refresher, opts Options) *Server {
	if opts.FactCheckRate <= 0 {
		opts.FactCheckRate = 20
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Hour
	}
	return &Server{
		auth:      authSvc,
		checker:   checker,
		feeds:     feeds,
		refresher: refresher,
		opts:      opts,
		limiter:   NewRateLimiter(opts.FactCheckRate, opts.RateWindow),
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/verdicts", s.listVerdicts)

		v1.POST("/auth/signup", s.signup)
		v1.POST("/auth/login", s.login)
		v1.POST("/auth/logout", s.logout)

		v1.GET("/feeds/sources", s.listSources)
		v1.GET("/feeds/items", s.listItems)
		v1.GET("/feeds/dates", s.listDates)

		secured := v1.Group("")
		secured.Use(auth.Middleware(s.auth, s.opts.AuthCookie))
		{
			secured.GET("/auth/me", s.me)

			secured.POST("/factchecks", RateLimitMiddleware(s.limiter), s.createFactCheck)
			secured.GET("/factchecks", s.listFactChecks)
			secured.GET("/factchecks/:id", s.getFactCheck)
			secured.DELETE("/factchecks/:id", s.deleteFactCheck)

			secured.POST("/feeds/refresh", s.refreshFeeds)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryInt 解析失败或非正数时返回默认值
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
