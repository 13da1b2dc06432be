package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	rssMaxItems     = 100
	rssMaxBodyBytes = 2 << 20 // 2MB，防止超大 feed 拖垮进程
	rssTimeout      = 15 * time.Second
	rssUserAgent    = "FactHubBot/1.0 (+https://github.com/LJTian/FactHub)"
)

// RSSFetcher 抓取单个 RSS 2.0 / Atom 订阅源
type RSSFetcher struct {
	Code    string
	URL     string
	Timeout time.Duration
}

func NewRSSFetcher(f Feed) *RSSFetcher {
	return &RSSFetcher{Code: f.Code, URL: f.URL}
}

func (r *RSSFetcher) Name() string {
	return r.Code
}

func (r *RSSFetcher) Fetch() ([]FeedItem, error) {
	zap.L().Info("fetch feed", zap.String("source", r.Code), zap.String("url", r.URL))

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = rssTimeout
	}
	c := colly.NewCollector(
		colly.UserAgent(rssUserAgent),
		colly.MaxBodySize(rssMaxBodyBytes),
	)
	c.SetRequestTimeout(timeout)
	c.OnRequest(func(req *colly.Request) {
		req.Headers.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8")
	})

	var (
		items []FeedItem
		seen  = make(map[string]bool)
	)
	add := func(it FeedItem) {
		if len(items) >= rssMaxItems || it.Title == "" || it.URL == "" || seen[it.URL] {
			return
		}
		seen[it.URL] = true
		it.Source = r.Code
		items = append(items, it)
	}

	// RSS 2.0
	c.OnXML("//item", func(e *colly.XMLElement) {
		link := text(e.ChildText("link"))
		if link == "" {
			// 部分站点只给 guid
			if g := text(e.ChildText("guid")); strings.HasPrefix(g, "http") {
				link = g
			}
		}
		author := text(e.ChildText("dc:creator"))
		if author == "" {
			author = text(e.ChildText("author"))
		}
		pub := text(e.ChildText("pubDate"))
		if pub == "" {
			pub = text(e.ChildText("dc:date"))
		}
		add(FeedItem{
			Title:        text(e.ChildText("title")),
			URL:          link,
			Description:  e.ChildText("description"),
			Author:       author,
			Categories:   childValues(e, "category", ""),
			PublishedRaw: pub,
			RawData:      map[string]any{"format": "rss"},
		})
	})

	// Atom
	c.OnXML("//entry", func(e *colly.XMLElement) {
		link := text(e.ChildAttr("link[@rel='alternate']", "href"))
		if link == "" {
			link = text(e.ChildAttr("link", "href"))
		}
		desc := e.ChildText("summary")
		if strings.TrimSpace(desc) == "" {
			desc = e.ChildText("content")
		}
		pub := text(e.ChildText("published"))
		if pub == "" {
			pub = text(e.ChildText("updated"))
		}
		add(FeedItem{
			Title:        text(e.ChildText("title")),
			URL:          link,
			Description:  desc,
			Author:       text(e.ChildText("author/name")),
			Categories:   childValues(e, "category", "term"),
			PublishedRaw: pub,
			RawData:      map[string]any{"format": "atom"},
		})
	})

	var fetchErr error
	c.OnError(func(resp *colly.Response, err error) {
		fetchErr = fmt.Errorf("%s: status %d: %w", r.Code, resp.StatusCode, err)
	})

	if err := c.Visit(r.URL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("%s: visit feed: %w", r.Code, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	zap.L().Info("feed fetched", zap.String("source", r.Code), zap.Int("items", len(items)))
	return items, nil
}

func text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// childValues 取所有匹配子节点的文本（attr 为空）或属性值
func childValues(e *colly.XMLElement, query, attr string) []string {
	n, ok := e.DOM.(*xmlquery.Node)
	if !ok {
		return nil
	}
	var out []string
	for _, c := range xmlquery.Find(n, query) {
		v := c.InnerText()
		if attr != "" {
			v = c.SelectAttr(attr)
		}
		if v = text(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
