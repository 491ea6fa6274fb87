// Package checker verifies Telegram username availability through a staged
// pipeline of public data sources.
//
// A candidate handle passes through a local heuristic screen, a shared result
// cache, the t.me profile page, the fragment.com marketplace, and optionally a
// pool of MTProto protocol credentials for a final cross-check. Every remote
// probe goes through a per-host sliding-window rate limiter, and terminal
// outcomes are cached so repeated checks of the same handle stay local.
//
// The Checker verifies single handles; the Orchestrator runs batches of
// generated candidates with bounded concurrency, per-batch timeouts, and
// session-level deduplication backed by a namestore.Store.
//
// Usage:
//
//	cfg, err := checker.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	chk, err := checker.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	out := chk.Check(ctx, "jaemin")
//	if out.Status == checker.StatusAvailable {
//		fmt.Println("grab it")
//	}
package checker
