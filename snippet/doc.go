// Package snippet models retrieved context excerpts and selects the most
// relevant ones within a token budget.
//
// Snippets arrive from upstream retrieval (LSP lookups, embedding search)
// already formatted and scored; this package never judges semantic
// relevance. The Optimizer deduplicates by content, orders by content-type
// priority and relevance, and greedily accumulates snippets until the
// budget is exhausted:
//
//	opt := snippet.NewOptimizer(meter)
//	result := opt.OptimizeContext(ctx, candidates, 4000)
//
// When the first non-fitting snippet is reached, a character-level prefix
// of it is taken if enough budget remains (partial fallback), and
// selection freezes: lower-priority snippets are never visited, even if
// individually small, so priority order is strict. If nothing fit at all,
// an even smaller prefix of the single most relevant snippet is attempted
// (tiny fallback) so that some representative content survives whenever a
// non-trivial budget exists.
//
// Input snippets are never mutated; partial and tiny copies carry the
// original id suffixed with "-partial" or "-tiny".
package snippet
