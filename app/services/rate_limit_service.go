// Package services provides external service integrations and technical concerns like notifications and rate limiting
package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitService tracks submission counts per hashed client identity
// and per-email cooldowns for confirmation resends. Rate limiting never
// hard-blocks a submission; callers feed the result into the spam score.
type RateLimitService interface {
	// RegisterSubmission increments the submission counter for the IP
	// hash and reports whether the client exceeded the window maximum.
	RegisterSubmission(ctx context.Context, ipHash string) (bool, error)
	// CheckEmailCooldown reports whether the email is inside the resend
	// cooldown and, when it is not, starts a fresh cooldown.
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
}

// RedisRateLimitService implements RateLimitService on Redis
type RedisRateLimitService struct {
	client        *redis.Client
	maxCount      int64
	window        time.Duration
	emailCooldown time.Duration
}

// NewRedisRateLimitService creates a Redis-backed rate limiter
func NewRedisRateLimitService(client *redis.Client, maxCount int, window, emailCooldown time.Duration) RateLimitService {
	return &RedisRateLimitService{
		client:        client,
		maxCount:      int64(maxCount),
		window:        window,
		emailCooldown: emailCooldown,
	}
}

func submissionKey(ipHash string) string {
	return fmt.Sprintf("lead_rate_%s", ipHash)
}

func cooldownKey(email string) string {
	// Key on a digest of the address so raw emails never appear in Redis
	return fmt.Sprintf("email_cooldown_%x", md5.Sum([]byte(strings.ToLower(email))))
}

// RegisterSubmission increments the per-IP counter atomically. The
// expiry is set only when the counter is created, so the window does
// not slide forward on repeat submissions.
func (s *RedisRateLimitService) RegisterSubmission(ctx context.Context, ipHash string) (bool, error) {
	key := submissionKey(ipHash)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate counter expiry: %w", err)
		}
	}

	return count > s.maxCount, nil
}

// CheckEmailCooldown is a set-if-absent presence check, not a counter
func (s *RedisRateLimitService) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	set, err := s.client.SetNX(ctx, cooldownKey(email), "1", s.emailCooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}

	return !set, nil
}

// MemoryRateLimitService implements RateLimitService in process memory
type MemoryRateLimitService struct {
	mu            sync.Mutex
	counters      map[string]*memoryCounter
	cooldowns     map[string]time.Time
	maxCount      int
	window        time.Duration
	emailCooldown time.Duration
	now           func() time.Time
}

type memoryCounter struct {
	count     int
	expiresAt time.Time
}

// NewMemoryRateLimitService creates an in-memory rate limiter
func NewMemoryRateLimitService(maxCount int, window, emailCooldown time.Duration) *MemoryRateLimitService {
	return &MemoryRateLimitService{
		counters:      make(map[string]*memoryCounter),
		cooldowns:     make(map[string]time.Time),
		maxCount:      maxCount,
		window:        window,
		emailCooldown: emailCooldown,
		now:           time.Now,
	}
}

func (s *MemoryRateLimitService) RegisterSubmission(ctx context.Context, ipHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := submissionKey(ipHash)

	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		s.counters[key] = &memoryCounter{count: 1, expiresAt: now.Add(s.window)}
		return false, nil
	}

	c.count++
	return c.count > s.maxCount, nil
}

func (s *MemoryRateLimitService) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := cooldownKey(email)

	if until, ok := s.cooldowns[key]; ok && now.Before(until) {
		return true, nil
	}

	s.cooldowns[key] = now.Add(s.emailCooldown)
	return false, nil
}
