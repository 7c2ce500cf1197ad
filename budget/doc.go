// Package budget computes token allocations for prompt components and
// applies last-resort waterfall truncation when an assembled prompt
// still exceeds the model ceiling.
//
// Calculator measures every component in model tokens, charges per-message
// and formatting overheads, applies the safety margin to the model's
// context window, and reports the residual budget available to context
// content:
//
//	calc := budget.NewCalculator(myTokenizer, cfg)
//	alloc := calc.CalculateTokenAllocation(ctx, components)
//	// alloc.ContextAllocationTokens feeds snippet.Optimizer
//
// Waterfaller walks content types in preservation order, keeping
// higher-priority content whole and truncating or clearing the rest:
//
//	wf := budget.NewWaterfaller(myTokenizer, cfg)
//	out := wf.PerformProportionalTruncation(ctx, components, target)
//
// Waterfall truncation is idempotent: output that already fits is
// returned unchanged with WasTruncated false. Diff content gets a
// hunk-aware emergency path so the minimal preserved unit is always a
// complete hunk, and failing that, a summary of changed file paths.
// Neither operation ever fails for well-formed input; tokenizer outages
// degrade to estimation inside the tokens.Meter.
package budget
