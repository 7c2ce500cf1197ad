// Package truncate provides structure-preserving truncation for managing
// LLM context.
//
// All cuts respect two invariants: a line is never split, and the result
// never contains a markdown code fence left open that was not already
// open in the source at the cut point.
//
// # Token-Budget Truncation
//
// Truncator cuts text to a token budget. A chars-per-token heuristic
// picks the initial cut point; the configured counter is the single
// source of truth, and the cut shrinks until the measured result fits:
//
//	tr := truncate.New().WithCounter(myCounter)
//	result, truncated := tr.ToTokenBudget(text, 500)
//
// # Diff Truncation
//
// Diff content degrades in whole hunks, never fragments. When not even
// one complete hunk fits, a minimal summary of changed file paths is
// emitted instead of an empty string:
//
//	result, truncated := truncate.DiffToTokenBudget(counter, diff, 400)
//
// # UTF-8 Support
//
// All character budgets count runes rather than bytes, so multi-byte
// characters are never split.
package truncate
