package cache

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/diettrack/internal/domain/meal"
)

type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val meal.Metrics
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) Get(ctx context.Context, userID string) (meal.Metrics, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[userID]
	c.mu.RUnlock()

	if !ok {
		return meal.Metrics{}, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, userID)
		c.mu.Unlock()
		return meal.Metrics{}, false
	}

	return e.val, true
}

func (c *Memory) Set(ctx context.Context, userID string, m meal.Metrics) {
	c.mu.Lock()
	c.m[userID] = entry{val: m, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	delete(c.m, userID)
	c.mu.Unlock()
}
