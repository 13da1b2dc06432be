// Package auth 提供邮箱密码注册登录、JWT 签发校验以及 gin 鉴权中间件。
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 8
	maxPasswordLen = 72 // bcrypt 只取前 72 字节
	maxNameRunes   = 100
)

var (
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func (s *Service) SignUp(ctx context.Context, email, password, name string) (*User, error) {
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	if len(password) < MinPasswordLen || len(password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidInput, MinPasswordLen, maxPasswordLen)
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameRunes {
		return nil, fmt.Errorf("%w: display name too long", ErrInvalidInput)
	}
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	zap.L().Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// Login 无论邮箱不存在还是密码错误都返回 ErrInvalidCredentials
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) User(ctx context.Context, id string) (*User, error) {
	u, err := s.users.FindUserByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}
