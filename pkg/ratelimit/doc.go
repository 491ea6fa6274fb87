// Package ratelimit implements sliding-window admission control for outbound
// network calls, keyed per remote endpoint.
//
// The limiter tracks individual request timestamps inside a trailing window.
// Allow gives a non-blocking admission decision; Acquire suspends the calling
// goroutine (never the process) until admission, honoring context
// cancellation. For any window of wall-clock time the number of admitted
// requests through one limiter never exceeds the configured limit.
//
// An optional adaptive mode adds a small extra sleep after each admission,
// proportional to how full the window is, so bursts are smoothed before they
// hit the hard limit rather than after.
//
// Each distinct remote endpoint should own its own limiter instance; keys
// within one instance share the configuration but not the window.
package ratelimit
