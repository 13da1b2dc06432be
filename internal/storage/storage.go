package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/auth"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("storage: record not found")

// 列表类查询的 Redis 缓存时长
const listCacheTTL = 5 * time.Minute

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	// TranslateError 让唯一键冲突返回 gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&FeedSource{}, &FeedItem{}, &FactCheck{}, &auth.User{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis ping failed", zap.String("addr", redisAddr), zap.Error(err))
	}

	return &Store{DB: db, Redis: rdb}, nil
}

func (s *Store) Close() error {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// getJSON Redis 未配置、未命中或解码失败都视为未命中
func (s *Store) getJSON(ctx context.Context, key string, v any) bool {
	if s.Redis == nil {
		return false
	}
	bs, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, v) == nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.Redis == nil {
		return
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, bs, ttl).Err(); err != nil {
		zap.L().Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetCachedResult / SetCachedResult 供核查服务缓存相同声明的结果
func (s *Store) GetCachedResult(ctx context.Context, key string, v any) bool {
	return s.getJSON(ctx, key, v)
}

func (s *Store) SetCachedResult(ctx context.Context, key string, v any, ttl time.Duration) {
	s.setJSON(ctx, key, v, ttl)
}
