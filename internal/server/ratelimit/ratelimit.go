// Package ratelimit throttles API clients with per-endpoint token buckets.
// The execute endpoints drive a real browser session, so they get a far
// stricter budget than uploads or reads.
package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EndpointConfig is the budget for one endpoint. Path matches by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // requests per Window; <= 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds limiter configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Endpoints       []EndpointConfig
}

// LoadConfig builds the limiter configuration from RATE_LIMIT_* environment
// variables, with the recommender's endpoint tiers baked in.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Endpoints: []EndpointConfig{
			// Browser-backed runs: one live session, so keep these rare.
			{Path: "/execute", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
			// Uploads are cheap but write to disk.
			{Path: "/upload", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
			{Path: "/resume", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
			// Health checks are free.
			{Path: "/health", Method: "GET", Limit: 0},
		},
	}
}

// Info reports the limit state returned alongside every decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	mu         sync.Mutex
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(float64(b.capacity), b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now
}

func (b *bucket) take() (allowed bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refill(now)
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	reset = now
	if b.tokens < float64(b.capacity) {
		deficit := float64(b.capacity) - b.tokens
		reset = now.Add(time.Duration(deficit / b.refillRate * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// Limiter tracks one token bucket per client+endpoint pair.
type Limiter struct {
	config *Config

	mu         sync.Mutex
	buckets    map[string]*bucket
	lastAccess map[string]time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// NewLimiter builds a limiter and starts its idle-bucket cleanup loop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	l := &Limiter{
		config:     config,
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow decides whether clientID may call method+path right now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	ep := l.match(path, method)
	if ep.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + ep.Path + ":" + method
	allowed, remaining, reset := l.bucketFor(key, ep).take()

	info := Info{
		Allowed:   allowed,
		Limit:     ep.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if retry := time.Until(reset); retry > 0 {
			info.RetryAfter = retry
		}
	}
	return allowed, info
}

// Stop terminates the cleanup loop.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}

// match finds the most specific endpoint budget: longest matching prefix wins.
func (l *Limiter) match(path, method string) EndpointConfig {
	best := EndpointConfig{
		Limit:  l.config.DefaultLimit,
		Window: l.config.DefaultWindow,
	}
	bestLen := -1
	for _, ep := range l.config.Endpoints {
		if ep.Method != method || !strings.HasPrefix(path, ep.Path) {
			continue
		}
		if len(ep.Path) > bestLen {
			best = ep
			bestLen = len(ep.Path)
		}
	}
	return best
}

func (l *Limiter) bucketFor(key string, ep EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[key] = time.Now()
	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := ep.Burst
	if capacity <= 0 {
		capacity = ep.Limit
	}
	b := newBucket(capacity, float64(ep.Limit)/ep.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.dropIdle(time.Now().Add(-time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) dropIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
