package checker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/rajuuu28ia/akusayangkamu/pkg/logger"
	"github.com/rajuuu28ia/akusayangkamu/pkg/ratelimit"
)

// ProtocolClient asks the platform directly whether a username is free.
// It reports true when the handle can be registered right now.
type ProtocolClient interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
}

// GotdClient adapts a connected MTProto API client to ProtocolClient.
// The caller owns the client lifecycle; this adapter only issues calls.
type GotdClient struct {
	api *tg.Client
}

// NewGotdClient wraps an MTProto API client.
func NewGotdClient(api *tg.Client) *GotdClient {
	return &GotdClient{api: api}
}

// CheckUsername issues account.checkUsername. A flood wait from the platform
// is surfaced as a FloodWaitError so the pool can put the credential on
// cooldown instead of hammering it.
func (g *GotdClient) CheckUsername(ctx context.Context, username string) (bool, error) {
	free, err := g.api.AccountCheckUsername(ctx, username)
	if err != nil {
		if wait, ok := tgerr.AsFloodWait(err); ok {
			return false, &FloodWaitError{Duration: wait}
		}
		return false, err
	}
	return free, nil
}

// credential is one pool entry. A credential sits out until coolUntil after
// the platform signals a flood wait through it.
type credential struct {
	name      string
	client    ProtocolClient
	coolUntil time.Time
}

// CredentialPool fans a protocol check over several credentials in rotation.
// Flood-waited credentials cool down individually, and a verdict requires a
// majority of the credentials that responded.
type CredentialPool struct {
	limiter   *ratelimit.Limiter
	limitKey  string
	coolExtra time.Duration
	log       *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	creds []*credential
	next  int
}

// PoolOption configures a CredentialPool.
type PoolOption func(*CredentialPool)

// WithPoolClock overrides the pool's time source for tests.
func WithPoolClock(now func() time.Time) PoolOption {
	return func(p *CredentialPool) {
		if now != nil {
			p.now = now
		}
	}
}

// NewCredentialPool builds an empty pool. Limiter may be nil when protocol
// calls need no shared window.
func NewCredentialPool(cfg Config, limiter *ratelimit.Limiter, log *slog.Logger, opts ...PoolOption) *CredentialPool {
	if log == nil {
		log = logger.Discard()
	}
	p := &CredentialPool{
		limiter:   limiter,
		limitKey:  "telegram",
		coolExtra: cfg.FloodWaitBuffer,
		log:       log.With(logger.Component("credpool")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add registers a credential under a display name used in logs.
func (p *CredentialPool) Add(name string, client ProtocolClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creds = append(p.creds, &credential{name: name, client: client})
}

// Size returns the number of registered credentials, cooling or not.
func (p *CredentialPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// pick returns up to n distinct credentials that are not cooling down,
// starting from the rotation cursor.
func (p *CredentialPool) pick(n int) []*credential {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var picked []*credential
	for i := 0; i < len(p.creds) && len(picked) < n; i++ {
		c := p.creds[(p.next+i)%len(p.creds)]
		if now.Before(c.coolUntil) {
			continue
		}
		picked = append(picked, c)
	}
	if len(p.creds) > 0 {
		p.next = (p.next + 1) % len(p.creds)
	}
	return picked
}

func (p *CredentialPool) coolDown(c *credential, wait time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.coolUntil = p.now().Add(wait + p.coolExtra)
}

// Check asks the pool whether username is free. Each eligible credential is
// consulted at most once; flood-waited ones are put on cooldown and skipped.
// The verdict is the majority of responses, or the single response when only
// one credential answered. ErrCredentialsExhausted means nothing responded.
func (p *CredentialPool) Check(ctx context.Context, username string) (bool, error) {
	creds := p.pick(p.Size())
	if len(creds) == 0 {
		return false, ErrCredentialsExhausted
	}

	responded, free := 0, 0
	for _, c := range creds {
		if ctx.Err() != nil {
			break
		}
		if p.limiter != nil {
			if err := p.limiter.Acquire(ctx, p.limitKey); err != nil {
				break
			}
		}

		ok, err := c.client.CheckUsername(ctx, username)
		if err != nil {
			if wait, isFlood := AsFloodWait(err); isFlood {
				p.log.Warn("credential flood waited",
					slog.String("credential", c.name),
					slog.Duration("wait", wait))
				p.coolDown(c, wait)
				continue
			}
			p.log.Debug("credential check failed",
				slog.String("credential", c.name),
				logger.Error(err))
			continue
		}

		responded++
		if ok {
			free++
		}
	}

	if responded == 0 {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, ErrCredentialsExhausted
	}
	return free*2 > responded, nil
}
