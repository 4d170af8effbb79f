package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
)

const (
	slidingPrefix = "ratelimit:v2:"
	fixedPrefix   = "ratelimit:"

	// ttlBuffer keeps a record alive slightly past its window.
	ttlBuffer = 60 * time.Second

	minStoredEntries = 20
)

// Policy parametrizes a limiter check.
type Policy struct {
	Name        string
	MaxAttempts int
	Window      time.Duration
}

// Presets.
var (
	PolicyLogin = Policy{Name: "login", MaxAttempts: 5, Window: 60 * time.Second}
	PolicyBulk  = Policy{Name: "bulk", MaxAttempts: 20, Window: 300 * time.Second}
	PolicyAPI   = Policy{Name: "api", MaxAttempts: 100, Window: 60 * time.Second}
)

// Result is the outcome of a check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	now       time.Time
}

// RetryAfter returns whole seconds until ResetAt, rounded up, never negative.
func (r Result) RetryAfter() int {
	if r.ResetAt.IsZero() || !r.ResetAt.After(r.now) {
		return 0
	}
	return int(math.Ceil(r.ResetAt.Sub(r.now).Seconds()))
}

type clocker interface {
	Now() time.Time
}

// Limiter checks keys against policies.
type Limiter struct {
	store kvstore.Store
	clock clocker
}

// New returns a Limiter backed by store.
func New(store kvstore.Store, clock clocker) *Limiter {
	return &Limiter{store: store, clock: clock}
}

// Check performs a sliding-window check for key and records the request
// when it is allowed.
func (l *Limiter) Check(ctx context.Context, key string, p Policy) Result {
	now := l.clock.Now()

	stamps, err := l.load(ctx, slidingPrefix+key)
	if err != nil {
		return l.failOpen(ctx, "read", key, p, now, err)
	}

	stamps = prune(stamps, now, p.Window)
	if len(stamps) >= p.MaxAttempts {
		return Result{
			Allowed:   false,
			Limit:     p.MaxAttempts,
			Remaining: 0,
			ResetAt:   resetAt(stamps, now, p.Window),
			now:       now,
		}
	}

	stamps = append(stamps, now.UnixMilli())
	if limit := max(p.MaxAttempts*2, minStoredEntries); len(stamps) > limit {
		stamps = stamps[len(stamps)-limit:]
	}

	raw, err := json.Marshal(stamps)
	if err != nil {
		return l.failOpen(ctx, "encode", key, p, now, err)
	}
	if err := l.store.Put(ctx, slidingPrefix+key, raw, kvstore.WithTTL(p.Window+ttlBuffer)); err != nil {
		return l.failOpen(ctx, "write", key, p, now, err)
	}

	return Result{
		Allowed:   true,
		Limit:     p.MaxAttempts,
		Remaining: max(p.MaxAttempts-len(stamps), 0),
		ResetAt:   resetAt(stamps, now, p.Window),
		now:       now,
	}
}

// Info reports the sliding-window state of key without recording a request.
// Remaining counts the same pruned window Check reports on.
func (l *Limiter) Info(ctx context.Context, key string, p Policy) Result {
	now := l.clock.Now()

	stamps, err := l.load(ctx, slidingPrefix+key)
	if err != nil {
		return l.failOpen(ctx, "read", key, p, now, err)
	}

	stamps = prune(stamps, now, p.Window)
	return Result{
		Allowed:   len(stamps) < p.MaxAttempts,
		Limit:     p.MaxAttempts,
		Remaining: max(p.MaxAttempts-len(stamps), 0),
		ResetAt:   resetAt(stamps, now, p.Window),
		now:       now,
	}
}

// Reset clears both window representations of key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return errors.Join(
		l.store.Delete(ctx, slidingPrefix+key),
		l.store.Delete(ctx, fixedPrefix+key),
	)
}

func (l *Limiter) load(ctx context.Context, key string) ([]int64, error) {
	raw, err := l.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stamps []int64
	if err := json.Unmarshal(raw, &stamps); err != nil {
		return nil, err
	}
	slices.Sort(stamps)

	return stamps, nil
}

func (l *Limiter) failOpen(ctx context.Context, op, key string, p Policy, now time.Time, err error) Result {
	slog.WarnContext(ctx, "rate limiter store failure, allowing request",
		"op", op, "key", key, "policy", p.Name, "error", err)

	return Result{
		Allowed:   true,
		Limit:     p.MaxAttempts,
		Remaining: p.MaxAttempts,
		ResetAt:   now.Add(p.Window),
		now:       now,
	}
}

// prune drops every timestamp at or before now-window.
func prune(stamps []int64, now time.Time, window time.Duration) []int64 {
	cutoff := now.Add(-window).UnixMilli()
	return slices.DeleteFunc(stamps, func(ts int64) bool { return ts <= cutoff })
}

func resetAt(stamps []int64, now time.Time, window time.Duration) time.Time {
	if len(stamps) == 0 {
		return now.Add(window)
	}
	return time.UnixMilli(stamps[0]).Add(window)
}
