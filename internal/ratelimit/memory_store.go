package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/clock"
)

// MemoryStore implements an in-memory rate limit store using token buckets,
// keyed by an arbitrary string identity. Suitable for single-instance
// deployments; see DESIGN.md for why no distributed store is wired here.
type MemoryStore struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
	clock   clock.Clock

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// NewMemoryStore creates a new in-memory rate limit store on the real clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCleanup(5 * time.Minute)
}

// NewMemoryStoreWithCleanup creates a new in-memory store with a custom
// cleanup interval.
func NewMemoryStoreWithCleanup(cleanupInterval time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(cleanupInterval, clock.RealClock{})
}

// NewMemoryStoreWithClock creates a new in-memory store backed by c, for
// deterministic tests against a clock.Manual.
func NewMemoryStoreWithClock(cleanupInterval time.Duration, c clock.Clock) *MemoryStore {
	s := &MemoryStore{
		buckets:         make(map[string]*TokenBucket),
		clock:           c,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Allow checks if a request under key should be allowed.
func (s *MemoryStore) Allow(ctx context.Context, key string, capacity, refillRate float64) (bool, float64, error) {
	bucket := s.getBucket(key, capacity, refillRate)
	allowed := bucket.Allow()
	return allowed, bucket.Remaining(), nil
}

// Reset resets the rate limit for key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, exists := s.buckets[key]; exists {
		bucket.Reset()
	}
	return nil
}

// Close stops background cleanup.
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	return nil
}

func (s *MemoryStore) getBucket(key string, capacity, refillRate float64) *TokenBucket {
	s.mu.RLock()
	bucket, exists := s.buckets[key]
	s.mu.RUnlock()
	if exists {
		return bucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, exists = s.buckets[key]; exists {
		return bucket
	}
	bucket = NewTokenBucketWithClock(capacity, refillRate, s.clock)
	s.buckets[key] = bucket
	return bucket
}

func (s *MemoryStore) cleanupLoop() {
	if s.cleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes buckets that are effectively full (inactive for a while).
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, bucket := range s.buckets {
		if bucket.Remaining() >= bucket.capacity*0.95 {
			delete(s.buckets, key)
		}
	}
}

// StoreStats reports current bucket counts, exposed for admin/metrics views.
type StoreStats struct {
	ActiveBuckets int
}

// GetStats returns current statistics.
func (s *MemoryStore) GetStats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreStats{ActiveBuckets: len(s.buckets)}
}
