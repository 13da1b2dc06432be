package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LJTian/FactHub/internal/collector"
	"github.com/LJTian/FactHub/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	name  string
	items []collector.FeedItem
	err   error
	block chan struct{}
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch() ([]collector.FeedItem, error) {
	if f.block != nil {
		<-f.block
	}
	return f.items, f.err
}

type fetchRecord struct {
	n   int
	err error
}

type fakeSink struct {
	mu      sync.Mutex
	saved   map[string]int
	records map[string]fetchRecord
	saveErr error
}

func newFakeSink() *fakeSink {
	return &fakeSink{saved: map[string]int{}, records: map[string]fetchRecord{}}
}

func (s *fakeSink) SaveItems(ctx context.Context, items []processor.ProcessedItem) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.saved[it.Source]++
	}
	return len(items), nil
}

func (s *fakeSink) RecordFetch(_ context.Context, code string, n int, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[code] = fetchRecord{n: n, err: err}
	return nil
}

func items(source string, urls ...string) []collector.FeedItem {
	out := make([]collector.FeedItem, 0, len(urls))
	for _, u := range urls {
		out = append(out, collector.FeedItem{Title: "t " + u, URL: u, Source: source})
	}
	return out
}

func TestRunOnceProcessesAllSources(t *testing.T) {
	sink := newFakeSink()
	boom := errors.New("boom")
	jobs := []FetcherJob{
		{Fetcher: &fakeFetcher{name: "a", items: items("a", "https://a/1", "https://a/2", "https://a/1")}, CronSpec: "*/30 * * * *"},
		{Fetcher: &fakeFetcher{name: "b", err: boom}, CronSpec: "0 * * * *"},
		{Fetcher: &fakeFetcher{name: "c"}, CronSpec: "0 * * * *"},
	}
	s, err := New(jobs, processor.NewSimpleProcessor(), sink)
	require.NoError(t, err)
	assert.Len(t, s.Cron().Entries(), 3)
	assert.Equal(t, []string{"a", "b", "c"}, s.Sources())

	results := s.RunOnce(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, RunResult{Source: "a", Fetched: 3, Saved: 2}, results[0])
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, RunResult{Source: "c"}, results[2])

	assert.Equal(t, 2, sink.saved["a"])
	assert.Equal(t, fetchRecord{n: 2}, sink.records["a"])
	assert.ErrorIs(t, sink.records["b"].err, boom)
	assert.Equal(t, fetchRecord{}, sink.records["c"])
}

func TestRunSource(t *testing.T) {
	sink := newFakeSink()
	s, err := New([]FetcherJob{
		{Fetcher: &fakeFetcher{name: "a", items: items("a", "https://a/1")}, CronSpec: "@hourly"},
	}, processor.NewSimpleProcessor(), sink)
	require.NoError(t, err)

	res, err := s.RunSource(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)

	_, err = s.RunSource(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSaveErrorIsRecorded(t *testing.T) {
	sink := newFakeSink()
	sink.saveErr = errors.New("db down")
	s, err := New([]FetcherJob{
		{Fetcher: &fakeFetcher{name: "a", items: items("a", "https://a/1")}, CronSpec: "@hourly"},
	}, processor.NewSimpleProcessor(), sink)
	require.NoError(t, err)

	res, err := s.RunSource(context.Background(), "a")
	assert.EqualError(t, err, "db down")
	assert.Equal(t, 1, res.Fetched)
	assert.EqualError(t, sink.records["a"].err, "db down")
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	block := make(chan struct{})
	f := &fakeFetcher{name: "slow", items: items("slow", "https://s/1"), block: block}
	s, err := New([]FetcherJob{{Fetcher: f, CronSpec: "@hourly"}}, processor.NewSimpleProcessor(), newFakeSink())
	require.NoError(t, err)

	done := make(chan RunResult)
	go func() {
		res, _ := s.RunSource(context.Background(), "slow")
		done <- res
	}()

	// 等第一次运行占住该订阅源
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running["slow"]
	}, time.Second, 5*time.Millisecond)

	_, err = s.RunSource(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	first := <-done
	assert.NoError(t, first.Err)
	assert.Equal(t, 1, first.Saved)
}

func TestCanceledContextStopsRun(t *testing.T) {
	sink := newFakeSink()
	block := make(chan struct{})
	s, err := New([]FetcherJob{
		{Fetcher: &fakeFetcher{name: "a", items: items("a", "https://a/1")}, CronSpec: "@hourly"},
		{Fetcher: &fakeFetcher{name: "slow", items: items("slow", "https://s/1"), block: block}, CronSpec: "@hourly"},
	}, processor.NewSimpleProcessor(), sink)
	require.NoError(t, err)

	// 已取消：不抓取也不记录
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.RunSource(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Fetched)
	assert.Empty(t, sink.records)

	// 抓取过程中取消：入库拿到已取消的 ctx
	ctx, cancel = context.WithCancel(context.Background())
	done := make(chan RunResult)
	go func() {
		res, _ := s.RunSource(ctx, "slow")
		done <- res
	}()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running["slow"]
	}, time.Second, 5*time.Millisecond)
	cancel()
	close(block)

	res = <-done
	assert.Equal(t, 1, res.Fetched)
	assert.Zero(t, res.Saved)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Zero(t, sink.saved["slow"])
}

func TestNewRejectsBadCron(t *testing.T) {
	_, err := New([]FetcherJob{{Fetcher: &fakeFetcher{name: "x"}, CronSpec: "not a cron"}}, processor.NewSimpleProcessor(), newFakeSink())
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	sink := newFakeSink()
	s, err := New([]FetcherJob{
		{Fetcher: &fakeFetcher{name: "a", items: items("a", "https://a/1")}, CronSpec: "@hourly"},
	}, processor.NewSimpleProcessor(), sink)
	require.NoError(t, err)
	s.startupDelay = time.Millisecond

	s.Start()
	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		_, ok := sink.records["a"]
		return ok
	}, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestJobsFromFeeds(t *testing.T) {
	jobs := JobsFromFeeds([]collector.Feed{
		{Code: "a", URL: "https://a.test/feed"},
		{Code: "b", URL: "https://b.test/feed", Cron: "0 * * * *"},
	}, "*/10 * * * *")
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Fetcher.Name())
	assert.Equal(t, "*/10 * * * *", jobs[0].CronSpec)
	assert.Equal(t, "0 * * * *", jobs[1].CronSpec)
}
