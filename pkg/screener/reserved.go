package screener

import (
	"strings"
	"sync"
)

// WordSet is a thread-safe set of reserved words shared between the screener
// and anything else that needs to consult it at runtime.
type WordSet struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewWordSet builds a WordSet from the given words, lower-casing each.
func NewWordSet(words ...string) *WordSet {
	s := &WordSet{words: make(map[string]struct{}, len(words))}
	s.Add(words...)
	return s
}

// Add inserts words into the set.
func (s *WordSet) Add(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		s.words[strings.ToLower(w)] = struct{}{}
	}
}

// Contains reports whether the word itself is in the set.
func (s *WordSet) Contains(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// MatchSubstring returns the first set member that appears inside the given
// name, or "" when none does. Only members of at least minLen characters are
// considered, to keep short generic words from rejecting everything.
func (s *WordSet) MatchSubstring(name string, minLen int) string {
	name = strings.ToLower(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for w := range s.words {
		if len(w) >= minLen && strings.Contains(name, w) {
			return w
		}
	}
	return ""
}

// Words returns a snapshot of the set contents.
func (s *WordSet) Words() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	return out
}

// DefaultReserved returns the stock reserved-word set: platform terms,
// technical vocabulary, support and security wording, financial terms, brand
// names, and common spam markers.
func DefaultReserved() *WordSet {
	return NewWordSet(
		// Platform terms
		"telegram", "admin", "support", "security", "settings", "contacts",
		"chat", "group", "channel", "bot", "test", "null", "undefined",
		"official", "help", "info", "news", "store", "contact",

		// Technical terms
		"system", "api", "app", "dev", "root", "mod", "moderator",
		"database", "server", "client", "web", "mobile", "desktop", "user",
		"account", "profile", "login", "logout", "register", "signup", "signin",

		// Support wording
		"helpdesk", "assistance", "service", "customer", "care",
		"feedback", "report", "issue", "problem", "inquiry",
		"question", "answer", "faq", "team", "staff", "operator", "agent",

		// Trust and security wording
		"verify", "verification", "confirmed", "authentic", "real",
		"true", "genuine", "original", "legitimate", "auth", "authenticated",
		"secure", "protected", "safe", "privacy", "private",

		// Financial terms
		"payment", "wallet", "money", "cash", "crypto", "bitcoin", "finance",
		"bank", "premium", "pay", "purchase", "buy", "sell", "price", "cost",

		// Brands
		"facebook", "meta", "instagram", "whatsapp", "twitter", "tiktok",
		"youtube", "google", "microsoft", "apple", "amazon", "netflix",
		"spotify", "paypal", "visa", "mastercard", "snapchat", "reddit",

		// Spam markers
		"porn", "adult", "xxx", "sex", "hack", "crack", "cheat", "spam",
		"free", "offer", "discount", "deal", "promo", "promotion", "winner",
		"prize", "limited", "hurry",
	)
}

// DefaultSensitive returns the high-sensitivity subset checked with fuzzy
// matching: words whose single-edit neighbours are as unusable as the words
// themselves.
func DefaultSensitive() *WordSet {
	return NewWordSet(
		"telegram", "admin", "support", "security", "official",
		"verify", "premium", "wallet", "bitcoin",
	)
}
