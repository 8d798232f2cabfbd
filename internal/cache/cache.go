// Package cache keeps the authenticated-user lookups of the auth middleware
// off the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// CachedUser is the subset of a user the auth middleware needs per request.
type CachedUser struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	IsActive bool            `json:"isActive"`
}

// FromUser copies the cached fields from a user row.
func FromUser(u *models.User) *CachedUser {
	return &CachedUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, IsActive: u.IsActive}
}

// UserCache stores CachedUser values by user id. Implementations never fail
// the request: errors are logged and treated as a miss.
type UserCache interface {
	Get(ctx context.Context, userID string) (*CachedUser, bool)
	Set(ctx context.Context, user *CachedUser)
	Invalidate(ctx context.Context, userID string)
}

// NopUserCache is used when REDIS_ADDR is not configured.
type NopUserCache struct{}

func (NopUserCache) Get(context.Context, string) (*CachedUser, bool) { return nil, false }
func (NopUserCache) Set(context.Context, *CachedUser)                {}
func (NopUserCache) Invalidate(context.Context, string)              {}

// RedisUserCache keeps users as JSON strings with a TTL.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisUserCache wraps an existing client.
func NewRedisUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(userID string) string {
	return fmt.Sprintf("user:%s:auth", userID)
}

// Get implements UserCache.
func (c *RedisUserCache) Get(ctx context.Context, userID string) (*CachedUser, bool) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Get().Warnw("redis GET failed", "error", err, "user_id", userID)
		}
		return nil, false
	}

	var user CachedUser
	if err := json.Unmarshal(data, &user); err != nil {
		logger.Get().Warnw("discarding malformed cached user", "error", err, "user_id", userID)
		return nil, false
	}
	return &user, true
}

// Set implements UserCache.
func (c *RedisUserCache) Set(ctx context.Context, user *CachedUser) {
	data, err := json.Marshal(user)
	if err != nil {
		logger.Get().Warnw("failed to encode cached user", "error", err, "user_id", user.ID)
		return
	}
	if err := c.client.Set(ctx, userKey(user.ID), data, c.ttl).Err(); err != nil {
		logger.Get().Warnw("redis SET failed", "error", err, "user_id", user.ID)
	}
}

// Invalidate implements UserCache.
func (c *RedisUserCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, userKey(userID)).Err(); err != nil {
		logger.Get().Warnw("redis DEL failed", "error", err, "user_id", userID)
	}
}
