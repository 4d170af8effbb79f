package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shandysiswandi/seedvault/internal/pkg/kvstore"
)

type fixedRecord struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"`
}

// CheckFixed performs a fixed-window check for key. The counter resets at
// window boundaries, so a client can burst up to twice the limit across one.
// It exists for older records; Check is the primary mode.
func (l *Limiter) CheckFixed(ctx context.Context, key string, p Policy) Result {
	now := l.clock.Now()

	var rec fixedRecord
	raw, err := l.store.Get(ctx, fixedPrefix+key)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
	case err != nil:
		return l.failOpen(ctx, "read", key, p, now, err)
	default:
		if err := json.Unmarshal(raw, &rec); err != nil {
			return l.failOpen(ctx, "decode", key, p, now, err)
		}
	}

	if rec.ResetAt <= now.UnixMilli() {
		rec = fixedRecord{ResetAt: now.Add(p.Window).UnixMilli()}
	}

	reset := time.UnixMilli(rec.ResetAt)
	if rec.Count >= p.MaxAttempts {
		return Result{Allowed: false, Limit: p.MaxAttempts, ResetAt: reset, now: now}
	}

	rec.Count++
	raw, err = json.Marshal(rec)
	if err != nil {
		return l.failOpen(ctx, "encode", key, p, now, err)
	}
	if err := l.store.Put(ctx, fixedPrefix+key, raw, kvstore.WithTTL(reset.Sub(now)+ttlBuffer)); err != nil {
		return l.failOpen(ctx, "write", key, p, now, err)
	}

	return Result{
		Allowed:   true,
		Limit:     p.MaxAttempts,
		Remaining: p.MaxAttempts - rec.Count,
		ResetAt:   reset,
		now:       now,
	}
}
