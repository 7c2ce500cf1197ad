// Package tokens provides token measurement for prompt budgeting.
//
// The package has two layers. The Counter interface and EstimatingCounter
// give fast, synchronous estimation based on the rule-of-thumb that
// approximately 4 characters equals 1 token for English text. The
// Tokenizer interface is the boundary to the real, possibly asynchronous
// model tokenizer; Meter wraps it with graceful degradation so callers
// never block or fail on tokenizer infrastructure.
//
// # Counting
//
//	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)
//	count := counter.Count("Hello, world!")     // ~3 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// For one-off counting, use the convenience function:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// # Metering
//
// Meter prefers the real tokenizer and falls back to estimation when it
// is unavailable. Model metadata (context-window ceiling, family) is
// cached per Meter instance; independent sessions get independent
// Meters and never interfere.
//
//	meter := tokens.NewMeter(myTokenizer)
//	count := meter.Count(ctx, text)          // never fails
//	info := meter.Model(ctx)                 // cached after first success
//	counter := meter.Bound(ctx)              // synchronous Counter view
//
// # Model Limits
//
// Get context window sizes for common models:
//
//	limit := tokens.Limit("claude-opus-4")  // 200000
//	limit := tokens.Limit("unknown")        // 100000 (default)
package tokens
