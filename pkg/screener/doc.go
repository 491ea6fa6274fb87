// Package screener statically classifies handle candidates before any network
// verification is spent on them.
//
// Screening is pure and side-effect free: a candidate either passes or is
// rejected with a reason tag. Rejections fall into two groups: format
// violations (length, charset, separator placement) and names that are almost
// certainly banned or reserved (reserved-word hits, near-misses of sensitive
// words, and statistical red flags such as low character diversity, long
// repeated runs, low Shannon entropy, or bot-like digit suffixes).
//
// The heuristic thresholds are deliberately configuration, not contract: they
// are best-effort and may produce false positives or negatives. The reserved
// word set is injected so deployments (and tests) can swap it.
package screener
