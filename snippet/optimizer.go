package snippet

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"sort"
	"strings"

	"github.com/randalmurphal/contextfit/config"
	"github.com/randalmurphal/contextfit/tokens"
	"github.com/randalmurphal/contextfit/truncate"
)

// Defaults for the optimizer's tuning knobs.
const (
	// DefaultSeparator is the inter-snippet separator whose token cost
	// is charged between already-selected snippets.
	DefaultSeparator = "\n\n"

	// DefaultMinPartialTokens is the minimum content budget (beyond the
	// marker) required before a partial prefix is attempted.
	DefaultMinPartialTokens = 50

	// DefaultMinTinyTokens is the content size of a tiny fragment.
	DefaultMinTinyTokens = 20

	// DefaultTinyBufferTokens is the extra headroom required before the
	// tiny fallback is attempted.
	DefaultTinyBufferTokens = 10
)

// OptimizationResult is the outcome of a selection pass.
type OptimizationResult struct {
	// OptimizedSnippets is the selection in priority order.
	OptimizedSnippets []ContextSnippet

	// WasTruncated is true if any snippet was dropped, partially cut,
	// or reduced to a tiny fragment. Deduplicated exact copies do not
	// count as truncation.
	WasTruncated bool
}

// Optimizer deduplicates and priority-selects snippets within a token
// budget, with partial and tiny fallback tiers.
type Optimizer struct {
	meter            *tokens.Meter
	prioritization   ContentPrioritization
	separator        string
	marker           string
	charsPerToken    float64
	minPartialTokens int
	minTinyTokens    int
	tinyBufferTokens int
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithPrioritization sets the content-type preservation order.
func WithPrioritization(p ContentPrioritization) OptimizerOption {
	return func(o *Optimizer) {
		if len(p) > 0 {
			o.prioritization = p
		}
	}
}

// WithSeparator sets the inter-snippet separator.
func WithSeparator(sep string) OptimizerOption {
	return func(o *Optimizer) { o.separator = sep }
}

// WithMarker sets the truncation marker appended to partial content.
func WithMarker(marker string) OptimizerOption {
	return func(o *Optimizer) { o.marker = marker }
}

// WithCharsPerToken sets the heuristic ratio used to size prefixes.
func WithCharsPerToken(ratio float64) OptimizerOption {
	return func(o *Optimizer) {
		if ratio > 0 {
			o.charsPerToken = ratio
		}
	}
}

// WithFloors sets the partial floor, tiny size, and tiny buffer, all in
// tokens. Non-positive values keep the defaults.
func WithFloors(minPartial, minTiny, tinyBuffer int) OptimizerOption {
	return func(o *Optimizer) {
		if minPartial > 0 {
			o.minPartialTokens = minPartial
		}
		if minTiny > 0 {
			o.minTinyTokens = minTiny
		}
		if tinyBuffer > 0 {
			o.tinyBufferTokens = tinyBuffer
		}
	}
}

// NewOptimizer creates an optimizer measuring through the given meter.
func NewOptimizer(meter *tokens.Meter, opts ...OptimizerOption) *Optimizer {
	if meter == nil {
		meter = tokens.NewMeter(nil)
	}
	o := &Optimizer{
		meter:            meter,
		prioritization:   DefaultPrioritization(),
		separator:        DefaultSeparator,
		marker:           truncate.DefaultMarker,
		charsPerToken:    tokens.DefaultCharsPerToken,
		minPartialTokens: DefaultMinPartialTokens,
		minTinyTokens:    DefaultMinTinyTokens,
		tinyBufferTokens: DefaultTinyBufferTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOptimizerFromConfig creates an optimizer with every tunable knob
// taken from cfg: prioritization, separator, marker, the chars-per-token
// ratio, and the partial/tiny floors. A nil cfg uses the defaults;
// explicit options override the config. An invalid configured
// prioritization falls back to the default order.
func NewOptimizerFromConfig(meter *tokens.Meter, cfg *config.Config, opts ...OptimizerOption) *Optimizer {
	if cfg == nil {
		cfg = config.Default()
	}
	prioritization, ok := Parse(cfg.Prioritization)
	if !ok {
		slog.Warn("invalid prioritization in config, using default order",
			"configured", cfg.Prioritization)
		prioritization = DefaultPrioritization()
	}
	base := []OptimizerOption{
		WithPrioritization(prioritization),
		WithCharsPerToken(cfg.CharsPerToken),
		WithFloors(cfg.MinPartialTokens, cfg.MinTinyTokens, cfg.TinyBufferTokens),
	}
	if cfg.SnippetSeparator != "" {
		base = append(base, WithSeparator(cfg.SnippetSeparator))
	}
	if cfg.TruncationMarker != "" {
		base = append(base, WithMarker(cfg.TruncationMarker))
	}
	return NewOptimizer(meter, append(base, opts...)...)
}

// OptimizeContext selects the most relevant snippets that fit within
// availableTokens. Selection freezes at the first snippet that does not
// fit whole: lower-priority snippets are never visited. When snippets
// exist but the budget admits none of them, WasTruncated is true:
// content existed and none was usable. Cancellation is polled between
// per-snippet measurements; on cancellation the current selection is
// returned frozen.
func (o *Optimizer) OptimizeContext(ctx context.Context, snippets []ContextSnippet, availableTokens int) OptimizationResult {
	if len(snippets) == 0 {
		return OptimizationResult{}
	}

	candidates := dedupe(snippets)
	sort.SliceStable(candidates, func(i, j int) bool {
		pi := o.prioritization.Priority(candidates[i].Type)
		pj := o.prioritization.Priority(candidates[j].Type)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})

	if availableTokens <= 0 {
		return OptimizationResult{WasTruncated: true}
	}

	counter := o.meter.Bound(ctx)
	separatorTokens := counter.Count(o.separator)
	markerTokens := counter.Count(o.marker)

	var selected []ContextSnippet
	used := 0
	cancelled := false
	for _, candidate := range candidates {
		if ctx != nil && ctx.Err() != nil {
			cancelled = true
			break
		}
		separator := 0
		if len(selected) > 0 {
			separator = separatorTokens
		}
		cost := counter.Count(candidate.Content)
		if used+separator+cost <= availableTokens {
			selected = append(selected, candidate)
			used += separator + cost
			continue
		}

		// Partial fallback, then freeze selection.
		remaining := availableTokens - used - separator
		if remaining > markerTokens+o.minPartialTokens {
			contentBudget := remaining - markerTokens
			if partial, ok := o.prefix(counter, candidate, "-partial", contentBudget, remaining); ok {
				selected = append(selected, partial)
			}
		}
		break
	}

	// Tiny fallback: nothing fit, but a non-trivial budget exists.
	if len(selected) == 0 && !cancelled &&
		availableTokens > markerTokens+o.minTinyTokens+o.tinyBufferTokens {
		if tiny, ok := o.prefix(counter, candidates[0], "-tiny", o.minTinyTokens, availableTokens); ok {
			selected = append(selected, tiny)
		}
	}

	return OptimizationResult{
		OptimizedSnippets: selected,
		WasTruncated:      truncatedSelection(candidates, selected),
	}
}

// prefix takes a character-level prefix of the snippet sized for
// contentTokens, re-closes any code fence the cut left open, appends the
// marker, and re-measures. The copy is included only if it fits within
// budgetTokens; the original snippet is never mutated.
func (o *Optimizer) prefix(counter tokens.Counter, s ContextSnippet, suffix string, contentTokens, budgetTokens int) (ContextSnippet, bool) {
	chars := int(float64(contentTokens) * o.charsPerToken)
	cut := truncate.FenceAwareCut(s.Content, chars)
	if strings.TrimSpace(cut) == "" {
		return ContextSnippet{}, false
	}
	content := cut + o.marker
	if counter.Count(content) > budgetTokens {
		return ContextSnippet{}, false
	}
	clone := s
	clone.ID = s.ID + suffix
	clone.Content = content
	return clone, true
}

// truncatedSelection reports whether anything was dropped or shortened.
func truncatedSelection(candidates, selected []ContextSnippet) bool {
	if len(selected) < len(candidates) {
		return true
	}
	for i := range selected {
		if selected[i].ID != candidates[i].ID {
			return true
		}
	}
	return false
}

// dedupe drops snippets whose trimmed content hashes identically to an
// earlier one. First occurrence wins. Input order is preserved.
func dedupe(snippets []ContextSnippet) []ContextSnippet {
	seen := make(map[[sha256.Size]byte]struct{}, len(snippets))
	out := make([]ContextSnippet, 0, len(snippets))
	for _, s := range snippets {
		key := sha256.Sum256([]byte(strings.TrimSpace(s.Content)))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
