package checker

import (
	"errors"
	"time"

	"github.com/rajuuu28ia/akusayangkamu/pkg/config"
)

// Config controls every tunable of the verification pipeline. All fields are
// loadable from the environment; zero values are replaced by the envDefault
// tags when loaded through LoadConfig.
type Config struct {
	// Remote endpoints. Tests point these at local servers.
	FragmentBaseURL string `env:"CHECKER_FRAGMENT_BASE_URL" envDefault:"https://fragment.com"`
	ProfileBaseURL  string `env:"CHECKER_PROFILE_BASE_URL" envDefault:"https://t.me"`

	// HTTP behavior.
	RequestTimeout time.Duration `env:"CHECKER_REQUEST_TIMEOUT" envDefault:"10s"`
	UserAgent      string        `env:"CHECKER_USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"`

	// Retry budget for transient failures. Flood waits signaled by a data
	// source are honored by sleeping and do not consume this budget.
	MaxRetries     int           `env:"CHECKER_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"CHECKER_RETRY_BASE_DELAY" envDefault:"500ms"`
	RetryMaxDelay  time.Duration `env:"CHECKER_RETRY_MAX_DELAY" envDefault:"10s"`

	// Per-host sliding window. Each remote host gets an independent limiter
	// with these parameters.
	RateLimit         int           `env:"CHECKER_RATE_LIMIT" envDefault:"25"`
	RateWindow        time.Duration `env:"CHECKER_RATE_WINDOW" envDefault:"30s"`
	AdaptiveBaseDelay time.Duration `env:"CHECKER_ADAPTIVE_BASE_DELAY" envDefault:"500ms"`
	AdaptiveJitterMax time.Duration `env:"CHECKER_ADAPTIVE_JITTER_MAX" envDefault:"200ms"`

	// Result cache. Available outcomes expire faster since they go stale the
	// moment anyone registers the handle.
	CacheTTL          time.Duration `env:"CHECKER_CACHE_TTL" envDefault:"15m"`
	AvailableCacheTTL time.Duration `env:"CHECKER_AVAILABLE_CACHE_TTL" envDefault:"5m"`

	// Batch orchestration.
	BatchSize      int           `env:"CHECKER_BATCH_SIZE" envDefault:"10"`
	Concurrency    int           `env:"CHECKER_CONCURRENCY" envDefault:"10"`
	BatchTimeout   time.Duration `env:"CHECKER_BATCH_TIMEOUT" envDefault:"90s"`
	BatchDelayBase time.Duration `env:"CHECKER_BATCH_DELAY_BASE" envDefault:"500ms"`

	// Generation session store.
	SessionTTL   time.Duration `env:"CHECKER_SESSION_TTL" envDefault:"1h"`
	SessionGrace time.Duration `env:"CHECKER_SESSION_GRACE" envDefault:"5m"`
	SessionSweep time.Duration `env:"CHECKER_SESSION_SWEEP" envDefault:"5m"`

	// Extra pause added on top of a credential's signaled flood wait before
	// it is eligible again.
	FloodWaitBuffer time.Duration `env:"CHECKER_FLOOD_WAIT_BUFFER" envDefault:"500ms"`
}

// LoadConfig reads the checker configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no environment overrides
// are set. Handy for tests that tweak a couple of fields.
func DefaultConfig() Config {
	return Config{
		FragmentBaseURL:   "https://fragment.com",
		ProfileBaseURL:    "https://t.me",
		RequestTimeout:    10 * time.Second,
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
		MaxRetries:        3,
		RetryBaseDelay:    500 * time.Millisecond,
		RetryMaxDelay:     10 * time.Second,
		RateLimit:         25,
		RateWindow:        30 * time.Second,
		AdaptiveBaseDelay: 500 * time.Millisecond,
		AdaptiveJitterMax: 200 * time.Millisecond,
		CacheTTL:          15 * time.Minute,
		AvailableCacheTTL: 5 * time.Minute,
		BatchSize:         10,
		Concurrency:       10,
		BatchTimeout:      90 * time.Second,
		BatchDelayBase:    500 * time.Millisecond,
		SessionTTL:        time.Hour,
		SessionGrace:      5 * time.Minute,
		SessionSweep:      5 * time.Minute,
		FloodWaitBuffer:   500 * time.Millisecond,
	}
}

// Validate checks invariants that env parsing cannot express.
func (c Config) Validate() error {
	switch {
	case c.FragmentBaseURL == "":
		return errors.Join(ErrInvalidConfiguration, errors.New("fragment base url is required"))
	case c.ProfileBaseURL == "":
		return errors.Join(ErrInvalidConfiguration, errors.New("profile base url is required"))
	case c.RateLimit <= 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("rate limit must be positive"))
	case c.RateWindow <= 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("rate window must be positive"))
	case c.MaxRetries < 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("max retries must not be negative"))
	case c.CacheTTL <= 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("cache ttl must be positive"))
	case c.BatchSize <= 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("batch size must be positive"))
	case c.Concurrency <= 0:
		return errors.Join(ErrInvalidConfiguration, errors.New("concurrency must be positive"))
	}
	return nil
}
