// Package ratelimit throttles inbound page and API requests per client using
// token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// idleBucketTTL is how long an untouched bucket is kept before cleanup drops it
const idleBucketTTL = time.Hour

// bucket is a token bucket refilled continuously at refillRate tokens per second.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func newBucket(capacity int, refillRate float64, now time.Time) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastSeen:   now,
	}
}

// take refills the bucket up to now, consumes one token if available and
// reports what is left and when the bucket will be full again. A denied take
// also reports how long until the next token arrives.
func (b *bucket) take(now time.Time) (allowed bool, remaining int, resetAt time.Time, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.refillRate)
	}
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		allowed = true
	} else if b.refillRate > 0 {
		wait = time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
	}

	resetAt = now
	if missing := b.capacity - b.tokens; missing > 0 && b.refillRate > 0 {
		resetAt = now.Add(time.Duration(missing / b.refillRate * float64(time.Second)))
	}
	return allowed, int(b.tokens), resetAt, wait
}

func (b *bucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen.Before(cutoff)
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter keeps one bucket per client and matched rule.
type Limiter struct {
	config  *Config
	now     func() time.Time
	buckets map[string]*bucket
	mu      sync.Mutex

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	return newLimiterWithClock(config, time.Now)
}

func newLimiterWithClock(config *Config, now func() time.Time) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Limiter{
		config:  config,
		now:     now,
		buckets: make(map[string]*bucket),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanup()
	}

	return l
}

// Allow reports whether a request from clientID to method+path may proceed.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	rule := MatchRule(path, method, l.config.Rules)
	if rule == nil {
		rule = &Rule{
			Pattern: "*",
			Limit:   l.config.DefaultLimit,
			Window:  l.config.DefaultWindow,
		}
	}

	// Unlimited rule (e.g., health check)
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.bucketFor(clientID+" "+rule.key(), rule, now)
	allowed, remaining, resetAt, wait := b.take(now)

	return allowed, Info{
		Allowed:    allowed,
		Limit:      rule.Limit,
		Remaining:  remaining,
		ResetTime:  resetAt,
		RetryAfter: wait,
	}
}

// bucketFor gets or creates the bucket stored under key.
func (l *Limiter) bucketFor(key string, rule *Rule, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	b := newBucket(rule.burst(), float64(rule.Limit)/rule.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.evictIdle(l.now())
		case <-l.cleanupStop:
			return
		}
	}
}

// evictIdle drops buckets unused for idleBucketTTL and returns how many went.
func (l *Limiter) evictIdle(now time.Time) int {
	cutoff := now.Add(-idleBucketTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
			evicted++
		}
	}
	return evicted
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
