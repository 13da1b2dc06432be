package collector

import "time"

// FeedItem 订阅源中的一条原始条目，尚未清洗
type FeedItem struct {
	Title  string
	URL    string
	Source string
	// 原文摘要，可能含 HTML，由 processor 统一清洗截断
	Description  string
	Author       string
	Categories   []string
	PublishedRaw string
	PublishedAt  time.Time
	RawData      map[string]any
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch() ([]FeedItem, error)
}
