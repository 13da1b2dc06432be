package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/LJTian/FactHub/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) listSources(c *gin.Context) {
	list, err := s.feeds.ListFeedSources(c.Request.Context())
	if err != nil {
		zap.L().Error("list feed sources failed", zap.Error(err))
		internalError(c)
		return
	}
	if list == nil {
		list = []storage.FeedSource{}
	}
	ok(c, list)
}

func (s *Server) listItems(c *gin.Context) {
	f := storage.ItemFilter{
		Source: c.Query("source"),
		Rating: c.Query("rating"),
		Query:  c.Query("q"),
		Date:   c.Query("date"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	items, err := s.feeds.ListItems(c.Request.Context(), f)
	if err != nil {
		zap.L().Error("list feed items failed", zap.Error(err))
		internalError(c)
		return
	}
	if items == nil {
		items = []storage.FeedItem{}
	}
	ok(c, items)
}

func (s *Server) listDates(c *gin.Context) {
	dates, err := s.feeds.ListPublishedDates(c.Request.Context(), c.Query("source"), queryInt(c, "limit", 31))
	if err != nil {
		zap.L().Error("list feed dates failed", zap.Error(err))
		internalError(c)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	ok(c, dates)
}

// refreshFeeds 异步触发采集，立即返回 202
func (s *Server) refreshFeeds(c *gin.Context) {
	if s.refresher == nil {
		fail(c, http.StatusServiceUnavailable, "refresh_unavailable", "feed refresh is not enabled")
		return
	}
	source := c.Query("source")
	if source != "" && !slices.Contains(s.refresher.Sources(), source) {
		fail(c, http.StatusNotFound, "unknown_source", "unknown feed source: "+source)
		return
	}

	// 请求结束后 gin 的 context 会被取消，后台采集不能沿用
	go func() {
		ctx := context.Background()
		if source == "" {
			s.refresher.RunOnce(ctx)
			return
		}
		if _, err := s.refresher.RunSource(ctx, source); err != nil {
			zap.L().Warn("manual refresh failed", zap.String("source", source), zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"code":    "ok",
		"message": "refresh started",
		"data":    gin.H{"source": source},
	})
}
