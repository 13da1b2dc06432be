package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 登录账号；密码只保存 bcrypt 哈希
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName  string    `gorm:"size:100" json:"displayName"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserStore 账号持久化接口，Service 只依赖它
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
}

var ErrUserNotFound = errors.New("auth: user not found")

// GormStore 基于 gorm 的 UserStore，与 storage 共用同一个 *gorm.DB
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("auth: create user: %w", err)
	}
	return nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) first(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &u, nil
}
