// Package ratelimit provides per-client sliding-window admission control for the
// token-issuing and selection endpoints.
//
// A Limiter keeps, for every client key, the timestamps of its admitted requests
// inside the trailing window. A request is admitted while fewer than quota
// timestamps remain after pruning. The set of tracked clients is capped; once it
// grows past the cap the oldest-inserted clients are dropped in one batch. This is
// insertion order, not usage recency, so a busy client may occasionally lose its
// window early.
//
// An optional process-wide ceiling (golang.org/x/time/rate) can be layered on
// top, and every decision can be reported to a StatsStore (memory or Redis).
package ratelimit
