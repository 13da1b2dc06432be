package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/collector"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxDescriptionRunes = 300
	maxCategories       = 5
)

// ProcessedItem 是写入存储层前的统一结构
type ProcessedItem struct {
	ID          string
	Title       string
	URL         string
	Source      string
	Description string
	Author      string
	Categories  []string
	// 从标题/摘要推断出的评级，识别不出为空
	Rating      string
	PublishedAt time.Time
	RawData     map[string]any
}

// SimpleProcessor 做基础清洗、评级推断与 ID 生成
type SimpleProcessor struct {
	policy *bluemonday.Policy
	now    func() time.Time
}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{
		policy: bluemonday.StrictPolicy(),
		now:    time.Now,
	}
}

func (p *SimpleProcessor) Process(items []collector.FeedItem) []ProcessedItem {
	out := make([]ProcessedItem, 0, len(items))
	seen := make(map[string]struct{})

	for _, it := range items {
		url := strings.TrimSpace(it.URL)
		if url == "" {
			continue
		}
		id := hashURL(url)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		title := p.cleanText(it.Title)
		desc := p.cleanText(it.Description)
		rating := InferRating(title, desc)
		if desc == "" {
			desc = title
		}

		published := it.PublishedAt
		if published.IsZero() {
			published = parseDate(it.PublishedRaw, p.now)
		}

		out = append(out, ProcessedItem{
			ID:          id,
			Title:       title,
			URL:         url,
			Source:      it.Source,
			Description: truncateRunes(desc, maxDescriptionRunes),
			Author:      p.cleanText(it.Author),
			Categories:  p.cleanCategories(it.Categories),
			Rating:      rating,
			PublishedAt: published.UTC(),
			RawData:     it.RawData,
		})
	}

	return out
}

// cleanText 去 HTML 标签、反转义实体并压缩空白
func (p *SimpleProcessor) cleanText(s string) string {
	if s == "" {
		return ""
	}
	// 标签前补空格，避免相邻块级元素的文字粘连
	s = p.policy.Sanitize(strings.ReplaceAll(s, "<", " <"))
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func (p *SimpleProcessor) cleanCategories(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range in {
		c = p.cleanText(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == maxCategories {
			break
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return strings.TrimSpace(string(rs[:limit])) + "…"
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
