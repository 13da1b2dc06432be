package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/collector"
	"github.com/LJTian/FactHub/internal/processor"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeedSource 描述一个事实核查机构的订阅源
type FeedSource struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Code    string `gorm:"size:64;uniqueIndex" json:"code"`
	Name    string `gorm:"size:128" json:"name"`
	FeedURL string `gorm:"size:512" json:"feedUrl"`
	SiteURL string `gorm:"size:256" json:"siteUrl"`
	Status  string `gorm:"size:32;index" json:"status"` // active / error

	LastFetchedAt *time.Time `json:"lastFetchedAt"`
	LastError     string     `gorm:"size:512" json:"lastError"`
	ItemCount     int64      `gorm:"-" json:"itemCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FeedItem struct {
	ID     string `gorm:"primaryKey;size:40" json:"id"`
	Title  string `gorm:"size:512" json:"title"`
	URL    string `gorm:"size:1024;uniqueIndex" json:"url"`
	Source string `gorm:"size:64;index" json:"source"`
	// processor 已按 300 rune 截断，这里的长度限制是双保险
	Description   string                      `gorm:"size:600" json:"description"`
	Author        string                      `gorm:"size:128" json:"author"`
	Categories    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"categories"`
	Rating        string                      `gorm:"size:16;index" json:"rating"`
	PublishedAt   time.Time                   `gorm:"index" json:"publishedAt"`
	PublishedDate string                      `gorm:"size:10;index" json:"publishedDate"` // YYYY-MM-DD (UTC)
	ExtraData     datatypes.JSONMap           `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemFilter 订阅条目列表的筛选条件
type ItemFilter struct {
	Source string
	Rating string
	Query  string
	Date   string // YYYY-MM-DD
	Limit  int
	Offset int
}

const (
	defaultItemLimit = 20
	maxItemLimit     = 200
)

func (f ItemFilter) normalize() ItemFilter {
	f.Source = strings.TrimSpace(f.Source)
	f.Rating = strings.TrimSpace(f.Rating)
	f.Query = strings.TrimSpace(f.Query)
	f.Date = strings.TrimSpace(f.Date)
	if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
		f.Date = ""
	}
	if f.Limit <= 0 || f.Limit > maxItemLimit {
		f.Limit = defaultItemLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (f ItemFilter) cacheKey() string {
	return fmt.Sprintf("feeds:items:%s:%s:%s:%d:%d:%s", f.Source, strings.ToLower(f.Rating), f.Date, f.Limit, f.Offset, strings.ToLower(f.Query))
}

// EnsureFeedSource 确保订阅源存在，并同步目录中的名称与地址
func (s *Store) EnsureFeedSource(ctx context.Context, f collector.Feed) (*FeedSource, error) {
	src := &FeedSource{
		Code:    f.Code,
		Name:    f.Name,
		FeedURL: f.URL,
		SiteURL: f.Site,
		Status:  "active",
	}
	db := s.DB.WithContext(ctx)
	if err := db.Where("code = ?", f.Code).FirstOrCreate(src).Error; err != nil {
		return nil, err
	}
	if src.Name != f.Name || src.FeedURL != f.URL || src.SiteURL != f.Site {
		if err := db.Model(src).Updates(map[string]any{
			"name":     f.Name,
			"feed_url": f.URL,
			"site_url": f.Site,
		}).Error; err != nil {
			return nil, err
		}
	}
	return src, nil
}

// ListFeedSources 返回全部订阅源及其条目数
func (s *Store) ListFeedSources(ctx context.Context) ([]FeedSource, error) {
	var list []FeedSource
	db := s.DB.WithContext(ctx)
	if err := db.Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		Source string
		N      int64
	}
	if err := db.Model(&FeedItem{}).Select("source, COUNT(*) AS n").Group("source").Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCode := make(map[string]int64, len(counts))
	for _, c := range counts {
		byCode[c.Source] = c.N
	}
	for i := range list {
		list[i].ItemCount = byCode[list[i].Code]
	}
	return list, nil
}

// RecordFetch 记录一次采集的结果，fetchErr 为空表示成功
func (s *Store) RecordFetch(ctx context.Context, code string, n int, fetchErr error) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"last_fetched_at": now,
		"status":          "active",
		"last_error":      "",
	}
	if fetchErr != nil {
		updates["status"] = "error"
		updates["last_error"] = truncateRunesDB(toValidUTF8(fetchErr.Error()), 512)
	}
	return s.DB.WithContext(ctx).Model(&FeedSource{}).Where("code = ?", code).Updates(updates).Error
}

func toFeedItem(it processor.ProcessedItem) *FeedItem {
	return &FeedItem{
		ID:            it.ID,
		Title:         truncateRunesDB(toValidUTF8(it.Title), 512),
		URL:           it.URL,
		Source:        it.Source,
		Description:   truncateRunesDB(toValidUTF8(it.Description), 600),
		Author:        truncateRunesDB(toValidUTF8(it.Author), 128),
		Categories:    datatypes.JSONSlice[string](it.Categories),
		Rating:        it.Rating,
		PublishedAt:   it.PublishedAt,
		PublishedDate: it.PublishedAt.UTC().Format(time.DateOnly),
		ExtraData:     datatypes.JSONMap(it.RawData),
	}
}

// SaveItems 以 URL 为幂等键保存一批条目，已存在时更新可变字段，返回处理条数
func (s *Store) SaveItems(ctx context.Context, items []processor.ProcessedItem) (int, error) {
	db := s.DB.WithContext(ctx)
	saved := 0
	for _, it := range items {
		fresh := toFeedItem(it)
		// FirstOrCreate 命中时会用库中旧值覆盖 n，更新字段取自 fresh
		n := *fresh
		if err := db.Where("url = ?", n.URL).FirstOrCreate(&n).Error; err != nil {
			return saved, err
		}
		if err := db.Model(&n).Updates(map[string]any{
			"title":          fresh.Title,
			"description":    fresh.Description,
			"author":         fresh.Author,
			"rating":         fresh.Rating,
			"categories":     fresh.Categories,
			"published_at":   fresh.PublishedAt,
			"published_date": fresh.PublishedDate,
		}).Error; err != nil {
			return saved, err
		}
		saved++
	}
	// 不主动失效列表缓存，依赖短 TTL 自然过期
	return saved, nil
}

// ListItems 按来源、评级、关键字与日期筛选，结果缓存 5 分钟
func (s *Store) ListItems(ctx context.Context, f ItemFilter) ([]FeedItem, error) {
	f = f.normalize()
	cacheKey := f.cacheKey()

	var list []FeedItem
	if s.getJSON(ctx, cacheKey, &list) {
		return list, nil
	}

	db := s.DB.WithContext(ctx).Model(&FeedItem{})
	db = applyItemFilter(db, f)
	if err := db.Order("published_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, err
	}

	if len(list) > 0 {
		s.setJSON(ctx, cacheKey, list, listCacheTTL)
	}
	return list, nil
}

func applyItemFilter(db *gorm.DB, f ItemFilter) *gorm.DB {
	if f.Source != "" {
		db = db.Where("source = ?", f.Source)
	}
	if f.Rating != "" {
		if strings.EqualFold(f.Rating, "none") {
			db = db.Where("rating = ''")
		} else {
			db = db.Where("LOWER(rating) = LOWER(?)", f.Rating)
		}
	}
	if f.Date != "" {
		db = db.Where("published_date = ?", f.Date)
	}
	if f.Query != "" {
		like := "%" + escapeLike(f.Query) + "%"
		db = db.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
	}
	return db
}

// escapeLike 转义 LIKE 通配符，关键字按字面匹配
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListPublishedDates 返回有数据的日期列表（倒序），结果缓存 5 分钟
func (s *Store) ListPublishedDates(ctx context.Context, source string, limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	cacheKey := fmt.Sprintf("feeds:dates:%s:%d", source, limit)
	var dates []string
	if s.getJSON(ctx, cacheKey, &dates) {
		return dates, nil
	}

	db := s.DB.WithContext(ctx).Model(&FeedItem{}).Distinct("published_date").Where("published_date <> ''")
	if source != "" {
		db = db.Where("source = ?", source)
	}
	if err := db.Order("published_date DESC").Limit(limit).Pluck("published_date", &dates).Error; err != nil {
		return nil, err
	}
	if len(dates) > 0 {
		s.setJSON(ctx, cacheKey, dates, listCacheTTL)
	}
	return dates, nil
}
