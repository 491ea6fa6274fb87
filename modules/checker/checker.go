package checker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rajuuu28ia/akusayangkamu/pkg/cache"
	"github.com/rajuuu28ia/akusayangkamu/pkg/generator"
	"github.com/rajuuu28ia/akusayangkamu/pkg/logger"
	"github.com/rajuuu28ia/akusayangkamu/pkg/ratelimit"
	"github.com/rajuuu28ia/akusayangkamu/pkg/screener"
)

// Checker runs the staged verification pipeline for single handles. It is
// safe for concurrent use; the cache and rate limiter are shared across all
// in-flight checks.
type Checker struct {
	cfg      Config
	screen   *screener.Screener
	results  *cache.TTLCache[string, Outcome]
	limiter  *ratelimit.Limiter
	fragment *FragmentClient
	profile  *ProfileClient
	pool     *CredentialPool
	log      *slog.Logger
}

// Option configures a Checker beyond what Config carries.
type Option func(*Checker)

// WithLogger attaches a structured logger. Defaults to a discarding one.
func WithLogger(log *slog.Logger) Option {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

// WithScreener replaces the default heuristic screener.
func WithScreener(s *screener.Screener) Option {
	return func(c *Checker) {
		if s != nil {
			c.screen = s
		}
	}
}

// WithCredentialPool enables the protocol cross-check stage. Without a pool
// the pipeline stops at the web contact check.
func WithCredentialPool(p *CredentialPool) Option {
	return func(c *Checker) {
		c.pool = p
	}
}

// New builds a Checker from cfg. The rate limiter is shared by every remote
// client, keyed per host, so the marketplace and the profile page each get
// an independent sliding window.
func New(cfg Config, opts ...Option) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var limOpts []ratelimit.Option
	if cfg.AdaptiveBaseDelay > 0 {
		limOpts = append(limOpts, ratelimit.WithAdaptiveDelay(cfg.AdaptiveBaseDelay, cfg.AdaptiveJitterMax))
	}
	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RateWindow, limOpts...)
	if err != nil {
		return nil, err
	}

	c := &Checker{
		cfg:     cfg,
		screen:  screener.New(screener.DefaultConfig()),
		limiter: limiter,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Available goes stale the moment someone registers the handle, so it
	// expires faster than the other terminal outcomes.
	c.results = cache.New[string, Outcome](cfg.CacheTTL,
		cache.WithTTLFunc[string, Outcome](func(out Outcome) time.Duration {
			if out.Status == StatusAvailable {
				return cfg.AvailableCacheTTL
			}
			return cfg.CacheTTL
		}))

	c.fragment = NewFragmentClient(cfg, limiter, c.log)
	c.profile = NewProfileClient(cfg, limiter, c.log)
	return c, nil
}

// Limiter exposes the shared rate limiter so callers embedding the checker
// into larger systems can inspect window state.
func (c *Checker) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// CacheLen returns the number of cached terminal outcomes.
func (c *Checker) CacheLen() int {
	return c.results.Len()
}

// Check verifies a single handle and always returns an outcome. Failures of
// individual data sources degrade to the next stage; when no stage can
// conclude, the outcome is StatusIndeterminate, which is never cached.
func (c *Checker) Check(ctx context.Context, name string) Outcome {
	name = generator.Normalize(name)

	// Stage 1: local heuristics. Cheap, so rejections are not cached.
	if res := c.screen.Screen(name); !res.Allowed {
		c.log.Debug("screened out",
			logger.Candidate(name),
			slog.String("reason", string(res.Reason)))
		if res.Reason == screener.ReasonInvalidFormat {
			return InvalidFormat(res.Detail)
		}
		return BannedOrReserved(string(res.Reason))
	}

	// Stage 2: cache.
	if out, ok := c.results.Get(name); ok {
		return out
	}

	// Stage 3: profile page. A refused or ban-phrased page is terminal;
	// a transient failure falls through to the marketplace.
	profileStatus, profileErr := c.profile.Probe(ctx, name)
	if profileErr == nil {
		switch profileStatus {
		case ProfileGone:
			return c.finish(name, BannedOrReserved("profile page not served"))
		case ProfileBanned:
			return c.finish(name, BannedOrReserved("ban phrase on profile page"))
		}
	} else {
		if ctx.Err() != nil {
			return Indeterminate("verification cancelled")
		}
		c.log.Debug("profile probe failed", logger.Candidate(name), logger.Error(profileErr))
	}

	// Stage 4: marketplace auctions.
	listing, err := c.fragment.SearchAuctions(ctx, name)
	if err != nil {
		c.log.Warn("auction search failed", logger.Candidate(name), logger.Error(err))
		return Indeterminate("marketplace unreachable")
	}
	if listing.Price > 0 {
		return c.finish(name, ForSale(listing.Price))
	}
	if listing.Status != "Unavailable" {
		// Listed but unpriced rows are auctions in flight; the handle is
		// neither free nor owned, so nothing conclusive can be said.
		return Indeterminate("marketplace status " + listing.Status)
	}

	// Stage 5: owner lookup. "Unavailable" on the marketplace covers both
	// taken and free handles, so the owner kind disambiguates.
	owner, err := c.fragment.SearchOwner(ctx, name)
	if err != nil {
		c.log.Warn("owner lookup failed", logger.Candidate(name), logger.Error(err))
		return Indeterminate("owner lookup failed")
	}
	switch owner {
	case OwnerUser:
		return c.finish(name, TakenBy(KindUser))
	case OwnerPremium:
		return c.finish(name, TakenBy(KindPremiumUser))
	case OwnerChannel:
		// The lookup rejects every non-user handle with the same sentence;
		// the bot suffix and the stage 3 page disambiguate.
		return c.finish(name, TakenBy(nonUserKind(name, profileStatus)))
	case OwnerNotFound:
		// Free as far as the marketplace knows; keep going.
	default:
		return Indeterminate("owner lookup returned " + string(owner))
	}

	// Stage 6: web contact check. The contact prompt only shows for user
	// accounts, so its presence contradicts the lookup above.
	contactStatus, err := c.profile.Probe(ctx, name)
	contactChecked := err == nil
	if err != nil {
		if ctx.Err() != nil {
			return Indeterminate("verification cancelled")
		}
		if c.pool == nil || c.pool.Size() == 0 {
			return Indeterminate("contact check failed")
		}
		contactStatus = ProfileInconclusive
	}
	switch contactStatus {
	case ProfileContactable:
		return c.finish(name, TakenBy(KindUser))
	case ProfileChannel:
		return c.finish(name, TakenBy(KindChannel))
	case ProfileGroup:
		return c.finish(name, TakenBy(KindGroup))
	case ProfileGone, ProfileBanned:
		return c.finish(name, BannedOrReserved("profile page not served"))
	}

	// Stage 7: protocol cross-check, when credentials are configured. The
	// pool's verdict outranks the web evidence. Exhaustion falls back to the
	// contact check only if that check actually observed the page; with both
	// sources failed there is no evidence to conclude from.
	if c.pool != nil && c.pool.Size() > 0 {
		free, err := c.pool.Check(ctx, name)
		switch {
		case err == nil && free:
			return c.finish(name, Available())
		case err == nil:
			return c.finish(name, TakenBy(takenKind(name)))
		case ctx.Err() != nil:
			return Indeterminate("verification cancelled")
		default:
			c.log.Warn("protocol cross-check unavailable",
				logger.Candidate(name), logger.Error(err))
			if !contactChecked {
				return Indeterminate("contact check and protocol cross-check failed")
			}
		}
	}

	return c.finish(name, Available())
}

// takenKind classifies a handle known only to be occupied. The platform
// reserves the "bot" suffix for bot accounts.
func takenKind(name string) OwnerKind {
	if strings.HasSuffix(name, "bot") {
		return KindBot
	}
	return KindUser
}

// nonUserKind refines the owner lookup's blanket non-user rejection using
// the bot suffix and whatever the stage 3 page fetch showed.
func nonUserKind(name string, page ProfileStatus) OwnerKind {
	if strings.HasSuffix(name, "bot") {
		return KindBot
	}
	if page == ProfileGroup {
		return KindGroup
	}
	return KindChannel
}

// finish caches a terminal outcome and returns it.
func (c *Checker) finish(name string, out Outcome) Outcome {
	c.results.Put(name, out)
	c.log.Info("verification concluded",
		logger.Candidate(name),
		slog.String("status", string(out.Status)))
	return out
}
