package factcheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LJTian/FactHub/internal/ai"
	"github.com/LJTian/FactHub/internal/credibility"
	"github.com/LJTian/FactHub/internal/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	searchConcurrency  = 3
	maxSources         = 10
	enrichTopN         = 3
	enrichConcurrency  = 3
	enrichMaxRunes     = 1500
	enrichTimeout      = 20 * time.Second
	defaultResultsPerQ = 5
	defaultHistory     = 20
	maxHistory         = 100
)

var (
	// ErrNoProvider 未配置生成式模型
	ErrNoProvider = errors.New("factcheck: no AI provider configured")
	// ErrUpstream 分析阶段调用模型失败
	ErrUpstream = errors.New("factcheck: upstream model failure")
)

// Result 是一次核查的完整输出，也是历史记录与缓存的存储单位
type Result struct {
	ID              string               `json:"id"`
	Claim           string               `json:"claim"`
	Verdict         Verdict              `json:"verdict"`
	Confidence      int                  `json:"confidence"`
	Summary         string               `json:"summary"`
	EvidenceFor     []string             `json:"evidenceFor"`
	EvidenceAgainst []string             `json:"evidenceAgainst"`
	Context         string               `json:"context"`
	Queries         []string             `json:"queries"`
	Sources         []credibility.Source `json:"sources"`
	Cached          bool                 `json:"cached"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// Extractor 抓取网页正文，用于给高可信来源补充摘录
type Extractor interface {
	Extract(ctx context.Context, url string, maxChars int) (string, error)
}

// Repository 持久化用户的核查历史
type Repository interface {
	SaveResult(ctx context.Context, userID string, r *Result) error
	ListResults(ctx context.Context, userID string, limit int) ([]Result, error)
	GetResult(ctx context.Context, userID, id string) (*Result, error)
	DeleteResult(ctx context.Context, userID, id string) error
}

// Cache 以声明哈希为 key 缓存核查结果
type Cache interface {
	GetCachedResult(ctx context.Context, key string, v any) bool
	SetCachedResult(ctx context.Context, key string, v any, ttl time.Duration)
}

type Options struct {
	ResultsPerQuery int
	CacheTTL        time.Duration
}

type Service struct {
	llm       ai.Client
	search    search.Client
	extractor Extractor
	repo      Repository
	cache     Cache
	opts      Options

	now func() time.Time
}

// NewService 组装核查流水线；search、extractor、cache 均可为 nil
func NewService(llm ai.Client, sc search.Client, ex Extractor, repo Repository, cache Cache, opts Options) *Service {
	if opts.ResultsPerQuery <= 0 {
		opts.ResultsPerQuery = defaultResultsPerQ
	}
	return &Service{
		llm:       llm,
		search:    sc,
		extractor: ex,
		repo:      repo,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

// Check 核查一条声明并写入该用户的历史
func (s *Service) Check(ctx context.Context, userID, claim string) (*Result, error) {
	claim = NormalizeClaim(claim)
	if err := ValidateClaim(claim); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, ErrNoProvider
	}

	key := CacheKey(claim)
	var res *Result
	if s.cache != nil {
		var cached Result
		if s.cache.GetCachedResult(ctx, key, &cached) {
			zap.L().Info("factcheck cache hit", zap.String("key", key))
			cached.Cached = true
			// 缓存 key 忽略大小写，返回与入库的声明以本次提交为准
			cached.Claim = claim
			res = &cached
		}
	}

	if res == nil {
		var err error
		res, err = s.run(ctx, claim)
		if err != nil {
			return nil, err
		}
		if s.cache != nil && s.opts.CacheTTL > 0 {
			s.cache.SetCachedResult(ctx, key, res, s.opts.CacheTTL)
		}
	}

	res.ID = uuid.NewString()
	res.CreatedAt = s.now().UTC()

	if s.repo != nil {
		// 入库失败不影响本次返回，只记录日志
		if err := s.repo.SaveResult(ctx, userID, res); err != nil {
			zap.L().Error("save factcheck failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, claim string) (*Result, error) {
	start := s.now()

	queries := s.GenerateQueries(ctx, claim)
	sources := s.gatherSources(ctx, queries)
	s.enrich(ctx, sources)

	analysis, err := s.Analyze(ctx, claim, sources)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Claim:           claim,
		Verdict:         analysis.Verdict,
		Confidence:      ScoreConfidence(analysis, sources),
		Summary:         analysis.Summary,
		EvidenceFor:     analysis.EvidenceFor,
		EvidenceAgainst: analysis.EvidenceAgainst,
		Context:         analysis.Context,
		Queries:         queries,
		Sources:         sources,
	}

	zap.L().Info("factcheck done",
		zap.String("verdict", string(res.Verdict)),
		zap.Int("confidence", res.Confidence),
		zap.Int("queries", len(queries)),
		zap.Int("sources", len(sources)),
		zap.Duration("took", s.now().Sub(start)),
	)
	return res, nil
}

// GenerateQueries 让模型产出检索语句；模型失败时直接用声明本身检索
func (s *Service) GenerateQueries(ctx context.Context, claim string) []string {
	text, err := s.llm.Generate(ctx, buildQueryPrompt(claim), ai.Options{Temperature: 0.3, MaxTokens: queryMaxTokens})
	if err != nil {
		zap.L().Warn("generate queries failed, fallback to claim", zap.Error(err))
		return []string{claim}
	}
	return parseQueries(text, claim)
}

// gatherSources 并发检索所有查询，单条失败只记录日志；合并后去重、打分并截断
func (s *Service) gatherSources(ctx context.Context, queries []string) []credibility.Source {
	if s.search == nil || len(queries) == 0 {
		return nil
	}

	perQuery := make([][]search.Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			results, err := s.search.Search(gctx, q, s.opts.ResultsPerQuery)
			if err != nil {
				zap.L().Warn("search query failed", zap.String("query", q), zap.Error(err))
				return nil
			}
			perQuery[i] = results
			return nil
		})
	}
	_ = g.Wait()

	var merged []search.Result
	for _, rs := range perQuery {
		merged = append(merged, rs...)
	}

	sources := credibility.Annotate(search.Dedupe(merged))
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// enrich 为前几个来源抓取正文摘录，失败忽略
func (s *Service) enrich(ctx context.Context, sources []credibility.Source) {
	if s.extractor == nil || len(sources) == 0 {
		return
	}
	n := enrichTopN
	if len(sources) < n {
		n = len(sources)
	}

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, enrichConcurrency)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			ectx, cancel := context.WithTimeout(ctx, enrichTimeout)
			defer cancel()
			text, err := s.extractor.Extract(ectx, sources[idx].URL, enrichMaxRunes)
			if err != nil {
				zap.L().Debug("extract source failed", zap.String("url", sources[idx].URL), zap.Error(err))
				return
			}
			// 每个 goroutine 只写自己下标的元素
			sources[idx].Excerpt = truncateRunes(collapse(text), enrichMaxRunes)
		}(i)
	}
	wg.Wait()
}

// Analyze 调用模型给出结论并解析
func (s *Service) Analyze(ctx context.Context, claim string, sources []credibility.Source) (Analysis, error) {
	text, err := s.llm.Generate(ctx, buildAnalysisPrompt(claim, sources), ai.Options{Temperature: 0.2, MaxTokens: analysisMaxTokens})
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return ParseAnalysis(text), nil
}

func (s *Service) History(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	return s.repo.ListResults(ctx, userID, limit)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Result, error) {
	return s.repo.GetResult(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteResult(ctx, userID, id)
}
