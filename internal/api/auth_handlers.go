package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/LJTian/FactHub/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *auth.User `json:"user"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_input", "email and password are required")
		return
	}
	u, err := s.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		fail(c, http.StatusConflict, "email_taken", "email already registered")
		return
	case err != nil:
		zap.L().Error("signup failed", zap.Error(err))
		internalError(c)
		return
	}
	s.startSession(c, u)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_input", "email and password are required")
		return
	}
	u, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		fail(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if err != nil {
		zap.L().Error("login failed", zap.Error(err))
		internalError(c)
		return
	}
	s.startSession(c, u)
}

// startSession 签发令牌，同时写入 HttpOnly cookie 供浏览器使用
func (s *Server) startSession(c *gin.Context, u *auth.User) {
	token, exp, err := s.auth.IssueToken(u)
	if err != nil {
		zap.L().Error("issue token failed", zap.Error(err))
		internalError(c)
		return
	}
	if s.opts.AuthCookie != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.opts.AuthCookie, token, int(s.auth.TTL().Seconds()), "/", "", s.opts.CookieSecure, true)
	}
	ok(c, sessionResponse{Token: token, ExpiresAt: exp, User: u})
}

func (s *Server) logout(c *gin.Context) {
	if s.opts.AuthCookie != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.opts.AuthCookie, "", -1, "/", "", s.opts.CookieSecure, true)
	}
	ok(c, nil)
}

func (s *Server) me(c *gin.Context) {
	u, err := s.auth.User(c.Request.Context(), auth.UserID(c))
	if errors.Is(err, auth.ErrInvalidToken) {
		fail(c, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}
	if err != nil {
		internalError(c)
		return
	}
	ok(c, u)
}
