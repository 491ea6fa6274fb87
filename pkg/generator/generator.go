package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Letter classes used by the randomized rules. Flat letters stay within the
// x-height; tall letters carry ascenders or descenders.
const (
	flatLetters = "aceimnorsuvwxz"
	tallLetters = "bdfghjklpqty"
)

// DefaultSampleCount is the number of candidates a randomized rule emits when
// the caller does not request a specific count.
const DefaultSampleCount = 30

// Generator applies mutation rules to base names. It is safe for concurrent
// use; the underlying random source is guarded by a mutex.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Generator backed by the given random source. A nil source is
// replaced with one seeded from the current time.
func New(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Normalize folds a base name into canonical handle form: NFKC normalization,
// lower case, surrounding whitespace and a leading "@" stripped.
func Normalize(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimPrefix(base, "@")
	return strings.ToLower(norm.NFKC.String(base))
}

// Generate produces n candidates for the base name using the given rule.
// The base name is normalized first. When n <= 0 the rule's natural output
// size is used: deterministic rules emit their full sequence, randomized rules
// emit DefaultSampleCount samples.
func (g *Generator) Generate(base string, method Method, n int) []Candidate {
	base = Normalize(base)
	if base == "" {
		return nil
	}

	var texts []string
	switch method {
	case MethodOnPoint:
		texts = g.OnPoint(base)
	case MethodSemiOnPoint:
		texts = g.SemiOnPoint(base)
	case MethodCanon:
		texts = g.Canon(base)
	case MethodSuffixCanon:
		texts = g.SuffixCanon(base)
	case MethodInsertLetter:
		texts = g.InsertLetter(base, samples(n))
	case MethodSubstituteLetter:
		texts = g.SubstituteLetter(base, samples(n))
	case MethodSwapAdjacent:
		texts = g.SwapAdjacent(base, samples(n))
	case MethodDeleteLetter:
		texts = g.DeleteLetter(base, samples(n))
	default:
		return nil
	}

	if n > 0 && len(texts) > n {
		texts = texts[:n]
	}

	out := make([]Candidate, 0, len(texts))
	for _, t := range texts {
		out = append(out, Candidate{Text: t, Method: method, BaseName: base})
	}
	return out
}

// OnPoint returns the base name itself.
func (g *Generator) OnPoint(base string) []string {
	return []string{base}
}

// SemiOnPoint duplicates the character at each position in turn, producing one
// candidate per position: "name" -> "nname", "naame", "namme", "namee".
func (g *Generator) SemiOnPoint(base string) []string {
	runes := []rune(base)
	out := make([]string, 0, len(runes))
	for i := range runes {
		doubled := make([]rune, 0, len(runes)+1)
		doubled = append(doubled, runes[:i+1]...)
		doubled = append(doubled, runes[i])
		doubled = append(doubled, runes[i+1:]...)
		out = append(out, string(doubled))
	}
	return out
}

// Canon swaps the first occurrence of 'i' with 'l', or 'l' with 'i' when the
// base name has no 'i'. Names containing neither letter come back unchanged.
func (g *Generator) Canon(base string) []string {
	switch {
	case strings.ContainsRune(base, 'i'):
		return []string{strings.Replace(base, "i", "l", 1)}
	case strings.ContainsRune(base, 'l'):
		return []string{strings.Replace(base, "l", "i", 1)}
	default:
		return []string{base}
	}
}

// SuffixCanon appends an 's'.
func (g *Generator) SuffixCanon(base string) []string {
	return []string{base + "s"}
}

// InsertLetter emits n candidates, each with one class letter inserted at a
// random position. Edge and interior placement alternate randomly per sample;
// names too short for interior insertion fall back to edge placement.
func (g *Generator) InsertLetter(base string, n int) []string {
	out := make([]string, 0, n)
	for range n {
		if len([]rune(base)) >= 2 && g.intn(2) == 0 {
			out = append(out, g.insertInterior(base))
		} else {
			out = append(out, g.insertEdge(base))
		}
	}
	return out
}

// InsertEdge emits n candidates with one class letter prepended or appended.
func (g *Generator) InsertEdge(base string, n int) []string {
	out := make([]string, 0, n)
	for range n {
		out = append(out, g.insertEdge(base))
	}
	return out
}

// InsertInterior emits n candidates with one class letter inserted strictly
// between two existing characters. Falls back to the base name when it is too
// short to have an interior.
func (g *Generator) InsertInterior(base string, n int) []string {
	out := make([]string, 0, n)
	for range n {
		if len([]rune(base)) < 2 {
			out = append(out, base)
			continue
		}
		out = append(out, g.insertInterior(base))
	}
	return out
}

// SubstituteLetter emits n candidates, each with one character replaced by
// another member of its own letter class. Characters outside both classes
// (digits, underscores) are left alone, yielding the base name unchanged.
func (g *Generator) SubstituteLetter(base string, n int) []string {
	runes := []rune(base)
	out := make([]string, 0, n)
	for range n {
		pos := g.intn(len(runes))
		class := classOf(runes[pos])
		if class == "" {
			out = append(out, base)
			continue
		}
		mutated := make([]rune, len(runes))
		copy(mutated, runes)
		mutated[pos] = g.pick(class)
		out = append(out, string(mutated))
	}
	return out
}

// SwapAdjacent emits n candidates, each with two adjacent characters
// transposed at a random position. Single-character names come back unchanged.
func (g *Generator) SwapAdjacent(base string, n int) []string {
	runes := []rune(base)
	out := make([]string, 0, n)
	for range n {
		if len(runes) < 2 {
			out = append(out, base)
			continue
		}
		pos := g.intn(len(runes) - 1)
		mutated := make([]rune, len(runes))
		copy(mutated, runes)
		mutated[pos], mutated[pos+1] = mutated[pos+1], mutated[pos]
		out = append(out, string(mutated))
	}
	return out
}

// DeleteLetter emits n candidates, each with the character at a random
// position removed. Single-character names come back unchanged.
func (g *Generator) DeleteLetter(base string, n int) []string {
	runes := []rune(base)
	out := make([]string, 0, n)
	for range n {
		if len(runes) < 2 {
			out = append(out, base)
			continue
		}
		pos := g.intn(len(runes))
		mutated := make([]rune, 0, len(runes)-1)
		mutated = append(mutated, runes[:pos]...)
		mutated = append(mutated, runes[pos+1:]...)
		out = append(out, string(mutated))
	}
	return out
}

func (g *Generator) insertEdge(base string) string {
	letter := g.pick(g.anyClass())
	if g.intn(2) == 0 {
		return string(letter) + base
	}
	return base + string(letter)
}

func (g *Generator) insertInterior(base string) string {
	runes := []rune(base)
	pos := 1 + g.intn(len(runes)-1)
	letter := g.pick(g.anyClass())
	mutated := make([]rune, 0, len(runes)+1)
	mutated = append(mutated, runes[:pos]...)
	mutated = append(mutated, letter)
	mutated = append(mutated, runes[pos:]...)
	return string(mutated)
}

func (g *Generator) anyClass() string {
	if g.intn(2) == 0 {
		return flatLetters
	}
	return tallLetters
}

func (g *Generator) pick(class string) rune {
	return rune(class[g.intn(len(class))])
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// classOf returns the letter class the rune belongs to, or "" for characters
// outside both classes.
func classOf(r rune) string {
	switch {
	case strings.ContainsRune(flatLetters, r):
		return flatLetters
	case strings.ContainsRune(tallLetters, r):
		return tallLetters
	default:
		return ""
	}
}

func samples(n int) int {
	if n <= 0 {
		return DefaultSampleCount
	}
	return n
}
