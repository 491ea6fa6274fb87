// Package generator produces handle candidates from a base name by applying
// small, rule-based string mutations.
//
// Each mutation rule is independently callable and returns an ordered slice of
// candidate strings. Rules are either deterministic (OnPoint, SemiOnPoint,
// Canon, SuffixCanon) or randomized (InsertLetter, SubstituteLetter,
// SwapAdjacent, DeleteLetter). Randomized rules draw from an injected random
// source so tests can pin the output.
//
// # Letter classes
//
// Randomized rules operate on two disjoint letter classes chosen to mirror
// common look-alike substitutions: flat letters ("aceimnorsuvwxz") whose glyphs
// stay within the x-height, and tall letters ("bdfghjklpqty") with ascenders or
// descenders. Substitution always stays within the class of the original
// character so the mutated handle keeps its visual rhythm.
//
// # Contract
//
// All rules tolerate base names of length >= 1. Rules that need at least two
// characters (SwapAdjacent, DeleteLetter, interior insertion) degrade to
// returning the input unchanged when the base name is too short. Output is not
// deduplicated; callers that need dedup must preserve insertion order, since
// downstream formatting groups candidates by originating rule.
//
// # Usage
//
//	g := generator.New(nil)
//	candidates := g.Generate("jaemin", generator.MethodSuffixCanon, 1)
//	// candidates[0].Text == "jaemins"
package generator
