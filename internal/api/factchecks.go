package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/LJTian/FactHub/internal/auth"
	"github.com/LJTian/FactHub/internal/factcheck"
	"github.com/LJTian/FactHub/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type factCheckRequest struct {
	Claim string `json:"claim"`
}

func (s *Server) createFactCheck(c *gin.Context) {
	var req factCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_claim", "request body must be JSON with a claim field")
		return
	}
	res, err := s.checker.Check(c.Request.Context(), auth.UserID(c), req.Claim)
	if err != nil {
		s.factCheckError(c, err)
		return
	}
	ok(c, res)
}

func (s *Server) factCheckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, factcheck.ErrInvalidClaim):
		fail(c, http.StatusBadRequest, "invalid_claim", err.Error())
	case errors.Is(err, factcheck.ErrNoProvider):
		fail(c, http.StatusServiceUnavailable, "provider_unavailable", "fact-checking is not configured")
	case errors.Is(err, factcheck.ErrUpstream):
		zap.L().Warn("factcheck upstream failure", zap.Error(err))
		fail(c, http.StatusBadGateway, "upstream_error", "the analysis service failed, please retry")
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, "timeout", "fact-check timed out")
	default:
		zap.L().Error("factcheck failed", zap.Error(err))
		internalError(c)
	}
}

func (s *Server) listFactChecks(c *gin.Context) {
	list, err := s.checker.History(c.Request.Context(), auth.UserID(c), queryInt(c, "limit", 20))
	if err != nil {
		zap.L().Error("list factchecks failed", zap.Error(err))
		internalError(c)
		return
	}
	if list == nil {
		list = []factcheck.Result{}
	}
	ok(c, list)
}

func (s *Server) getFactCheck(c *gin.Context) {
	res, err := s.checker.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, "not_found", "fact-check not found")
		return
	}
	if err != nil {
		internalError(c)
		return
	}
	ok(c, res)
}

func (s *Server) deleteFactCheck(c *gin.Context) {
	err := s.checker.Delete(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, "not_found", "fact-check not found")
		return
	}
	if err != nil {
		internalError(c)
		return
	}
	ok(c, gin.H{"id": c.Param("id")})
}
