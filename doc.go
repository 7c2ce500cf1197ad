// Package contextfit allocates hard-bounded token budgets across the
// heterogeneous pieces of an LLM prompt and truncates content that does
// not fit, without breaking structural units such as markdown code
// fences or diff hunks.
//
// contextfit is a library layer: it decides how many tokens each prompt
// component may consume and shrinks content to match, but it never
// retrieves content, never builds the literal prompt text, and never
// talks to a model. Each subpackage can be used independently:
//
//   - tokens: token counting, the external tokenizer boundary, and
//     model context-window metadata
//   - truncate: structure-preserving truncation primitives, including
//     hunk-aware diff truncation
//   - snippet: context snippet model, deduplication, and
//     priority-ordered selection within a token budget
//   - budget: prompt component bundles, token allocation, and the
//     last-resort waterfall truncator
//   - config: engine tuning knobs with TOML/YAML loading and hot reload
//
// # Quick Start
//
// Compute an allocation, select context snippets, and apply the safety
// net if the assembled prompt is still over budget:
//
//	cfg := config.Default()
//	calc := budget.NewCalculator(myTokenizer, cfg)
//	alloc := calc.CalculateTokenAllocation(ctx, components)
//
//	opt := snippet.NewOptimizer(calc.Meter())
//	result := opt.OptimizeContext(ctx, candidates, alloc.ContextAllocationTokens)
//
//	// After assembling the prompt, if it still exceeds the ceiling:
//	wf := budget.NewWaterfaller(myTokenizer, cfg)
//	truncated := wf.PerformProportionalTruncation(ctx, components, alloc.TotalAvailableTokens)
package contextfit
