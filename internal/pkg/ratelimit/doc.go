// Package ratelimit implements a sliding-window rate limiter over a
// key-value store without transactions or compare-and-swap.
//
// Each key holds the unix-millisecond timestamps of the requests allowed in
// the current window. A check prunes the timestamps that fell out of the
// window, denies once the limit is reached and otherwise appends now.
//
// The read-modify-write is not atomic: concurrent checks for one key may both
// be admitted, so the limit is soft. Store failures fail open.
package ratelimit
