// Package cache provides a generic, thread-safe, time-bounded map for
// remembering verification outcomes between checks.
//
// Entries are valid only while younger than their TTL and are lazily evicted
// on the next lookup; there is no background sweeper, so an idle cache costs
// nothing. Put overwrites unconditionally; staleness of at most one concurrent
// write is acceptable because cached outcomes are advisory, not authoritative.
//
// A per-value TTL policy can be installed for callers that want different
// lifetimes per outcome (for example, a short TTL for "available" results that
// can go stale the moment someone registers the name, and a longer one for
// "taken" results that rarely change):
//
//	c := cache.New[string, Outcome](15*time.Minute,
//		cache.WithTTLFunc[string, Outcome](func(o Outcome) time.Duration {
//			if o.Status == StatusAvailable {
//				return 5 * time.Minute
//			}
//			return time.Hour
//		}),
//	)
package cache
