package namestore

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// session groups generated candidates for one base name.
type session struct {
	entries     map[string]time.Time
	complete    bool
	completedAt time.Time
}

// Store is an in-memory generation session store. It is safe for concurrent
// use and runs a background sweep until Close is called.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	ttl        time.Duration
	grace      time.Duration
	sweepEvery time.Duration

	log  *slog.Logger
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an individual candidate entry blocks regeneration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithGrace sets how long a completed session is kept before purging.
func WithGrace(grace time.Duration) Option {
	return func(s *Store) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// WithSweepInterval sets how often the background sweep runs.
func WithSweepInterval(every time.Duration) Option {
	return func(s *Store) {
		if every > 0 {
			s.sweepEvery = every
		}
	}
}

// WithLogger attaches a logger for sweep reporting.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store with a 1 hour entry TTL, a 5 minute completion grace
// period, and a 5 minute sweep interval, and starts the sweep goroutine.
func New(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[string]*session),
		ttl:        time.Hour,
		grace:      5 * time.Minute,
		sweepEvery: 5 * time.Minute,
		log:        slog.New(slog.DiscardHandler),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()
	return s
}

// Record adds a generated candidate to the session for base, creating the
// session when absent. Recording reopens a completed session.
func (s *Store) Record(base, candidate string) {
	base, candidate = normalize(base), normalize(candidate)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[base]
	if !ok {
		sess = &session{entries: make(map[string]time.Time)}
		s.sessions[base] = sess
	}
	sess.entries[candidate] = s.now()
	sess.complete = false
}

// Seen reports whether the candidate is held by an unexpired entry of the
// session for base.
func (s *Store) Seen(base, candidate string) bool {
	base, candidate = normalize(base), normalize(candidate)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[base]
	if !ok {
		return false
	}
	at, ok := sess.entries[candidate]
	return ok && s.now().Sub(at) < s.ttl
}

// Filter returns the candidates not yet present in the session for base,
// preserving input order. Nothing is recorded.
func (s *Store) Filter(base string, candidates []string) []string {
	base = normalize(base)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[base]
	if !ok {
		return append([]string(nil), candidates...)
	}

	now := s.now()
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		at, seen := sess.entries[normalize(c)]
		if seen && now.Sub(at) < s.ttl {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Complete marks the session for base as finished. Completed sessions are
// purged wholesale once the grace period passes.
func (s *Store) Complete(base string) {
	base = normalize(base)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[base]; ok {
		sess.complete = true
		sess.completedAt = s.now()
	}
}

// Len returns the number of unexpired entries held for base.
func (s *Store) Len(base string) int {
	base = normalize(base)

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[base]
	if !ok {
		return 0
	}
	now := s.now()
	n := 0
	for _, at := range sess.entries {
		if now.Sub(at) < s.ttl {
			n++
		}
	}
	return n
}

// Sweep removes expired entries and lapsed completed sessions immediately.
// It is also called periodically by the background loop.
func (s *Store) Sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removedEntries, removedSessions := 0, 0
	for base, sess := range s.sessions {
		if sess.complete && now.Sub(sess.completedAt) >= s.grace {
			removedEntries += len(sess.entries)
			removedSessions++
			delete(s.sessions, base)
			continue
		}
		for c, at := range sess.entries {
			if now.Sub(at) >= s.ttl {
				delete(sess.entries, c)
				removedEntries++
			}
		}
		if len(sess.entries) == 0 {
			delete(s.sessions, base)
			removedSessions++
		}
	}

	if removedEntries > 0 || removedSessions > 0 {
		s.log.Debug("session sweep",
			slog.Int("entries_removed", removedEntries),
			slog.Int("sessions_removed", removedSessions),
		)
	}
}

// Close stops the background sweep.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
