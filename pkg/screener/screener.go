package screener

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Reason tags a rejection with the check that produced it.
type Reason string

const (
	// ReasonInvalidFormat marks names violating length, charset, or
	// separator placement rules. These can never become registrable.
	ReasonInvalidFormat Reason = "invalid_format"
	// ReasonReserved marks exact or substring hits on the reserved set.
	ReasonReserved Reason = "reserved_word"
	// ReasonNearReserved marks names within edit distance one of a
	// high-sensitivity reserved word.
	ReasonNearReserved Reason = "near_reserved_word"
	// ReasonLowDiversity marks names with too few distinct characters.
	ReasonLowDiversity Reason = "low_character_diversity"
	// ReasonRepeatedRun marks names with an overlong run of one character.
	ReasonRepeatedRun Reason = "repeated_character_run"
	// ReasonLowEntropy marks longer names with implausibly low entropy.
	ReasonLowEntropy Reason = "low_entropy"
	// ReasonDigitSuffix marks names ending in a bot-like digit tail.
	ReasonDigitSuffix Reason = "digit_heavy_suffix"
)

// Result reports whether a candidate passed screening and, when it did not,
// which check rejected it.
type Result struct {
	Allowed bool
	Reason  Reason
	Detail  string
}

// Config carries the heuristic thresholds. The exact values are best-effort
// tuning knobs, not contract; DefaultConfig gives the relaxed variant.
type Config struct {
	// MinLength and MaxLength bound the handle length.
	MinLength int `env:"SCREENER_MIN_LENGTH" envDefault:"5"`
	MaxLength int `env:"SCREENER_MAX_LENGTH" envDefault:"32"`

	// SubstringMinLength is the shortest reserved word considered for
	// substring matching.
	SubstringMinLength int `env:"SCREENER_SUBSTRING_MIN_LENGTH" envDefault:"5"`

	// MinDistinctRatio is the minimum distinct-character ratio.
	MinDistinctRatio float64 `env:"SCREENER_MIN_DISTINCT_RATIO" envDefault:"0.3"`

	// MaxRun is the longest tolerated run of one repeated character.
	MaxRun int `env:"SCREENER_MAX_RUN" envDefault:"3"`

	// MinEntropy rejects names of at least EntropyMinLength characters
	// whose Shannon entropy (bits per character) falls below it.
	MinEntropy       float64 `env:"SCREENER_MIN_ENTROPY" envDefault:"1.5"`
	EntropyMinLength int     `env:"SCREENER_ENTROPY_MIN_LENGTH" envDefault:"8"`

	// MaxDigitSuffix is the longest tolerated trailing digit run.
	MaxDigitSuffix int `env:"SCREENER_MAX_DIGIT_SUFFIX" envDefault:"3"`
}

// DefaultConfig returns the relaxed threshold variant.
func DefaultConfig() Config {
	return Config{
		MinLength:          5,
		MaxLength:          32,
		SubstringMinLength: 5,
		MinDistinctRatio:   0.3,
		MaxRun:             3,
		MinEntropy:         1.5,
		EntropyMinLength:   8,
		MaxDigitSuffix:     3,
	}
}

// Option configures a Screener.
type Option func(*Screener)

// WithReserved swaps the reserved-word set.
func WithReserved(set *WordSet) Option {
	return func(s *Screener) {
		if set != nil {
			s.reserved = set
		}
	}
}

// WithSensitive swaps the high-sensitivity subset used for fuzzy matching.
func WithSensitive(set *WordSet) Option {
	return func(s *Screener) {
		if set != nil {
			s.sensitive = set
		}
	}
}

// Screener is a static candidate classifier. It performs no I/O and is safe
// for concurrent use.
type Screener struct {
	cfg       Config
	reserved  *WordSet
	sensitive *WordSet
}

// New builds a Screener with the given thresholds. Zero-valued fields in cfg
// are replaced with their defaults.
func New(cfg Config, opts ...Option) *Screener {
	def := DefaultConfig()
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	if cfg.SubstringMinLength <= 0 {
		cfg.SubstringMinLength = def.SubstringMinLength
	}
	if cfg.MinDistinctRatio <= 0 {
		cfg.MinDistinctRatio = def.MinDistinctRatio
	}
	if cfg.MaxRun <= 0 {
		cfg.MaxRun = def.MaxRun
	}
	if cfg.MinEntropy <= 0 {
		cfg.MinEntropy = def.MinEntropy
	}
	if cfg.EntropyMinLength <= 0 {
		cfg.EntropyMinLength = def.EntropyMinLength
	}
	if cfg.MaxDigitSuffix <= 0 {
		cfg.MaxDigitSuffix = def.MaxDigitSuffix
	}

	s := &Screener{
		cfg:       cfg,
		reserved:  DefaultReserved(),
		sensitive: DefaultSensitive(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen classifies a single candidate. Checks run in fixed order: format
// rules, reserved-word matching, fuzzy matching against the sensitive subset,
// then the statistical red flags.
func (s *Screener) Screen(name string) Result {
	name = strings.ToLower(strings.TrimSpace(name))

	if detail, ok := s.checkFormat(name); !ok {
		return Result{Reason: ReasonInvalidFormat, Detail: detail}
	}

	if s.reserved.Contains(name) {
		return Result{Reason: ReasonReserved, Detail: name}
	}
	if w := s.reserved.MatchSubstring(name, s.cfg.SubstringMinLength); w != "" && w != name {
		return Result{Reason: ReasonReserved, Detail: fmt.Sprintf("contains %q", w)}
	}

	for _, w := range s.sensitive.Words() {
		if name != w && withinOneEdit(name, w) {
			return Result{Reason: ReasonNearReserved, Detail: fmt.Sprintf("one edit from %q", w)}
		}
	}

	if r := distinctRatio(name); r < s.cfg.MinDistinctRatio {
		return Result{Reason: ReasonLowDiversity, Detail: fmt.Sprintf("distinct ratio %.2f", r)}
	}
	if run := longestRun(name); run > s.cfg.MaxRun {
		return Result{Reason: ReasonRepeatedRun, Detail: fmt.Sprintf("run of %d", run)}
	}
	if len(name) >= s.cfg.EntropyMinLength {
		if e := entropy(name); e < s.cfg.MinEntropy {
			return Result{Reason: ReasonLowEntropy, Detail: fmt.Sprintf("entropy %.2f", e)}
		}
	}
	if tail := digitSuffix(name); tail > s.cfg.MaxDigitSuffix {
		return Result{Reason: ReasonDigitSuffix, Detail: fmt.Sprintf("%d trailing digits", tail)}
	}

	return Result{Allowed: true}
}

// checkFormat applies the platform format rules: starts with a letter, length
// within bounds, [a-z0-9_] only, no doubled and no trailing underscore.
func (s *Screener) checkFormat(name string) (string, bool) {
	n := len(name)
	switch {
	case n < s.cfg.MinLength:
		return fmt.Sprintf("shorter than %d", s.cfg.MinLength), false
	case n > s.cfg.MaxLength:
		return fmt.Sprintf("longer than %d", s.cfg.MaxLength), false
	}

	first := rune(name[0])
	if first < 'a' || first > 'z' {
		return "must start with a letter", false
	}
	for _, r := range name {
		valid := (r >= 'a' && r <= 'z') || unicode.IsDigit(r) && r < 128 || r == '_'
		if !valid {
			return fmt.Sprintf("forbidden character %q", r), false
		}
	}
	if strings.Contains(name, "__") {
		return "doubled underscore", false
	}
	if strings.HasSuffix(name, "_") {
		return "trailing underscore", false
	}
	return "", true
}

// withinOneEdit reports whether a and b are at most one insertion, deletion,
// or substitution apart.
func withinOneEdit(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}

	i, j, edits := 0, 0, 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++
		}
		j++
	}
	edits += lb - j
	return edits <= 1
}

func distinctRatio(name string) float64 {
	seen := make(map[rune]struct{}, len(name))
	for _, r := range name {
		seen[r] = struct{}{}
	}
	return float64(len(seen)) / float64(len([]rune(name)))
}

func longestRun(name string) int {
	best, run := 0, 0
	var prev rune = -1
	for _, r := range name {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > best {
			best = run
		}
	}
	return best
}

// entropy returns the Shannon entropy of the name in bits per character.
func entropy(name string) float64 {
	counts := make(map[rune]int, len(name))
	total := 0
	for _, r := range name {
		counts[r]++
		total++
	}
	e := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}

func digitSuffix(name string) int {
	n := 0
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] < '0' || name[i] > '9' {
			break
		}
		n++
	}
	return n
}
