package generator

// Method identifies the mutation rule that produced a candidate.
type Method string

const (
	// MethodOnPoint returns the base name itself, unmodified.
	MethodOnPoint Method = "on_point"
	// MethodSemiOnPoint duplicates one existing character in place.
	MethodSemiOnPoint Method = "semi_on_point"
	// MethodCanon swaps the first occurrence of 'i' and 'l'.
	MethodCanon Method = "canon"
	// MethodSuffixCanon appends a plural 's'.
	MethodSuffixCanon Method = "suffix_canon"
	// MethodInsertLetter inserts one letter at an edge or interior position.
	MethodInsertLetter Method = "insert_letter"
	// MethodSubstituteLetter replaces one letter with a same-class look-alike.
	MethodSubstituteLetter Method = "substitute_letter"
	// MethodSwapAdjacent transposes two adjacent characters.
	MethodSwapAdjacent Method = "swap_adjacent"
	// MethodDeleteLetter removes one character.
	MethodDeleteLetter Method = "delete_letter"
)

// Methods lists all mutation rules in priority order: exact and near-exact
// forms first, then the heavier single-edit mutations.
func Methods() []Method {
	return []Method{
		MethodOnPoint,
		MethodSemiOnPoint,
		MethodCanon,
		MethodSuffixCanon,
		MethodInsertLetter,
		MethodSubstituteLetter,
		MethodSwapAdjacent,
		MethodDeleteLetter,
	}
}

// Candidate is one generated handle derived from a base name by a mutation
// rule. Candidates are immutable once produced.
type Candidate struct {
	Text     string `json:"text"`
	Method   Method `json:"method"`
	BaseName string `json:"base_name"`
}
