package middleware

import (
    "context"
    "sync"
    "time"
)

// Rate limiter ONLY for invalid auth attempts
type InvalidAuthRateLimiter struct {
    mu       sync.Mutex
    attempts map[string]*attemptInfo
    limit    int
    window   time.Duration
    now      func() time.Time
}

type attemptInfo struct {
    count   int
    firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failed attempts per IP per window.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
    return &InvalidAuthRateLimiter{
        attempts: make(map[string]*attemptInfo),
        limit:    limit,
        window:   window,
        now:      time.Now,
    }
}

// Allow records a failed attempt from ip and reports whether it is still
// within the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := r.now()
    info, exists := r.attempts[ip]
    if !exists {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return true
    }

    // Reset if window expired
    if now.Sub(info.firstAt) > r.window {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return true
    }

    if info.count >= r.limit {
        return false
    }
    info.count++
    return true
}

// Blocked reports whether ip has exhausted its attempts without recording one.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    info, ok := r.attempts[ip]
    return ok && r.now().Sub(info.firstAt) <= r.window && info.count >= r.limit
}

// Run drops stale entries every 5 minutes until ctx is done.
func (r *InvalidAuthRateLimiter) Run(ctx context.Context) {
    ticker := time.NewTicker(5 * time.Minute)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            r.sweep()
        }
    }
}

func (r *InvalidAuthRateLimiter) sweep() {
    r.mu.Lock()
    defer r.mu.Unlock()
    now := r.now()
    for ip, info := range r.attempts {
        if now.Sub(info.firstAt) > r.window {
            delete(r.attempts, ip)
        }
    }
}
