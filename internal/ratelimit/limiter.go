// Package ratelimit is a front-door abuse guard: an in-memory token-bucket
// limiter keyed by string identity, with a chi middleware wrapper. It does
// not participate in admission (internal/capacity) or assignment
// (internal/assign).
package ratelimit

import "context"

// Store is a pluggable token-bucket backend, keyed by an arbitrary string
// identity (userId for CreateSession, sessionId for Poll).
type Store interface {
	Allow(ctx context.Context, key string, capacity, refillRate float64) (allowed bool, remaining float64, err error)
	Reset(ctx context.Context, key string) error
	Close() error
}

// Config holds the two limit classes this package enforces: CreateSession and Poll, each per identity key.
type Config struct {
	Store Store

	CreatePerSecond float64
	CreateBurst     float64

	PollPerSecond float64
	PollBurst     float64
}

// DefaultConfig returns the documented defaults: 1 CreateSession per 5s and
// 2 Polls per second per sessionId.
func DefaultConfig() Config {
	return Config{
		CreatePerSecond: 0.2,
		CreateBurst:     1,
		PollPerSecond:   2,
		PollBurst:       4,
	}
}

// Limiter enforces both limit classes.
type Limiter struct {
	store Store

	createCapacity float64
	createRefill   float64
	pollCapacity   float64
	pollRefill     float64
}

// NewLimiter builds a Limiter from cfg, defaulting to a MemoryStore.
func NewLimiter(cfg Config) *Limiter {
	if cfg.CreatePerSecond <= 0 {
		cfg.CreatePerSecond = 0.2
	}
	if cfg.CreateBurst <= 0 {
		cfg.CreateBurst = 1
	}
	if cfg.PollPerSecond <= 0 {
		cfg.PollPerSecond = 2
	}
	if cfg.PollBurst <= 0 {
		cfg.PollBurst = 4
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{
		store:          store,
		createCapacity: cfg.CreateBurst,
		createRefill:   cfg.CreatePerSecond,
		pollCapacity:   cfg.PollBurst,
		pollRefill:     cfg.PollPerSecond,
	}
}

// AllowCreate checks the CreateSession limit for userId. An empty key
// always allows, mirroring the teacher's "no identity, allow by default"
// fail-open rule.
func (l *Limiter) AllowCreate(userID string) bool {
	if userID == "" {
		return true
	}
	allowed, _, err := l.store.Allow(context.Background(), "create:"+userID, l.createCapacity, l.createRefill)
	if err != nil {
		return true
	}
	return allowed
}

// AllowPoll checks the Poll limit for key (the sessionId being polled).
func (l *Limiter) AllowPoll(key string) bool {
	if key == "" {
		return true
	}
	allowed, _, err := l.store.Allow(context.Background(), "poll:"+key, l.pollCapacity, l.pollRefill)
	if err != nil {
		return true
	}
	return allowed
}

// Close releases the backing store's resources.
func (l *Limiter) Close() error {
	return l.store.Close()
}
