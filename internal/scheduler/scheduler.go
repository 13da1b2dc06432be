package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LJTian/FactHub/internal/collector"
	"github.com/LJTian/FactHub/internal/processor"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrUnknownSource = errors.New("scheduler: unknown source")
	ErrBusy          = errors.New("scheduler: source is already being fetched")
)

const (
	// 延迟执行首轮采集，避免与服务启动后的首批请求争抢资源
	defaultStartupDelay = 15 * time.Second
	saveTimeout         = 2 * time.Minute
)

// FetcherJob 一个订阅源及其采集周期
type FetcherJob struct {
	Fetcher  collector.Fetcher
	CronSpec string
}

type Processor interface {
	Process(items []collector.FeedItem) []processor.ProcessedItem
}

// Sink 保存清洗后的条目并记录每次采集状态
type Sink interface {
	SaveItems(ctx context.Context, items []processor.ProcessedItem) (int, error)
	RecordFetch(ctx context.Context, code string, n int, fetchErr error) error
}

// RunResult 单个订阅源一次采集的结果
type RunResult struct {
	Source  string `json:"source"`
	Fetched int    `json:"fetched"`
	Saved   int    `json:"saved"`
	Err     error  `json:"-"`
}

type Scheduler struct {
	cron      *cron.Cron
	jobs      []FetcherJob
	processor Processor
	sink      Sink

	// 同一订阅源同时只跑一次（定时任务与手动刷新可能重叠）
	mu      sync.Mutex
	running map[string]bool

	startupDelay time.Duration
	timer        *time.Timer
}

func New(jobs []FetcherJob, p Processor, sink Sink) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{zap.S()})))

	s := &Scheduler{
		cron:         c,
		jobs:         jobs,
		processor:    p,
		sink:         sink,
		running:      make(map[string]bool),
		startupDelay: defaultStartupDelay,
	}

	for _, j := range jobs {
		f := j.Fetcher
		if _, err := c.AddFunc(j.CronSpec, func() { s.run(context.Background(), f) }); err != nil {
			return nil, fmt.Errorf("scheduler: source %s: bad cron %q: %w", f.Name(), j.CronSpec, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	s.timer = time.AfterFunc(s.startupDelay, func() { s.RunOnce(context.Background()) })
	s.mu.Unlock()
}

// Stop 停止定时器并等待正在执行的定时任务结束
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// Sources 返回已注册的订阅源 code
func (s *Scheduler) Sources() []string {
	out := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Fetcher.Name())
	}
	return out
}

// RunOnce 并发执行全部订阅源的单次采集；ctx 取消后尚未开始的订阅源直接跳过，进行中的入库随之中断
func (s *Scheduler) RunOnce(ctx context.Context) []RunResult {
	zap.L().Info("start collect job", zap.Int("sources", len(s.jobs)))

	results := make([]RunResult, len(s.jobs))
	var wg sync.WaitGroup
	for i, j := range s.jobs {
		wg.Add(1)
		go func(i int, f collector.Fetcher) {
			defer wg.Done()
			results[i] = s.run(ctx, f)
		}(i, j.Fetcher)
	}
	wg.Wait()

	zap.L().Info("collect job done (all sources)")
	return results
}

// RunSource 只采集指定的订阅源
func (s *Scheduler) RunSource(ctx context.Context, code string) (RunResult, error) {
	for _, j := range s.jobs {
		if j.Fetcher.Name() == code {
			res := s.run(ctx, j.Fetcher)
			return res, res.Err
		}
	}
	return RunResult{Source: code}, fmt.Errorf("%w: %s", ErrUnknownSource, code)
}

func (s *Scheduler) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}

func (s *Scheduler) run(parent context.Context, f collector.Fetcher) RunResult {
	name := f.Name()
	res := RunResult{Source: name}
	if err := parent.Err(); err != nil {
		res.Err = err
		return res
	}
	if !s.acquire(name) {
		zap.L().Info("skip fetch, previous run still in progress", zap.String("source", name))
		res.Err = ErrBusy
		return res
	}
	defer s.release(name)

	ctx, cancel := context.WithTimeout(parent, saveTimeout)
	defer cancel()

	items, err := f.Fetch()
	res.Fetched = len(items)
	if err == nil && len(items) > 0 {
		processed := s.processor.Process(items)
		// 条数 = 本轮解析到的数量（非新增数，已存在会更新）
		res.Saved, err = s.sink.SaveItems(ctx, processed)
	}
	res.Err = err

	if err != nil {
		zap.L().Warn("fetch source failed", zap.String("source", name), zap.Error(err))
	} else {
		zap.L().Info("fetch source done", zap.String("source", name),
			zap.Int("fetched", res.Fetched), zap.Int("saved", res.Saved))
	}
	if rerr := s.sink.RecordFetch(ctx, name, res.Saved, err); rerr != nil {
		zap.L().Warn("record fetch status failed", zap.String("source", name), zap.Error(rerr))
	}
	return res
}

// cronLogger 把 cron 内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// JobsFromFeeds 为每个订阅源创建 RSS 采集任务，未单独配置 cron 的使用 defaultSpec
func JobsFromFeeds(feeds []collector.Feed, defaultSpec string) []FetcherJob {
	jobs := make([]FetcherJob, 0, len(feeds))
	for _, f := range feeds {
		jobs = append(jobs, FetcherJob{
			Fetcher:  collector.NewRSSFetcher(f),
			CronSpec: f.CronFor(defaultSpec),
		})
	}
	return jobs
}
