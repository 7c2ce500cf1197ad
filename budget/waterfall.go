package budget

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/contextfit/config"
	"github.com/randalmurphal/contextfit/snippet"
	"github.com/randalmurphal/contextfit/tokens"
	"github.com/randalmurphal/contextfit/truncate"
)

// Waterfaller is the last-resort cross-type truncator, invoked only
// when the fully assembled prompt still exceeds the model ceiling after
// snippet optimization. It walks content types in preservation order,
// keeping earlier types whole for as long as the budget allows.
type Waterfaller struct {
	meter          *tokens.Meter
	cfg            *config.Config
	prioritization snippet.ContentPrioritization
}

// NewWaterfaller creates a waterfall truncator. A nil tokenizer degrades
// to estimation; a nil config uses the defaults. An invalid configured
// prioritization falls back to the default order.
func NewWaterfaller(tokenizer tokens.Tokenizer, cfg *config.Config) *Waterfaller {
	if cfg == nil {
		cfg = config.Default()
	}
	prioritization, ok := snippet.Parse(cfg.Prioritization)
	if !ok {
		slog.Warn("invalid prioritization in config, using default order",
			"configured", cfg.Prioritization)
		prioritization = snippet.DefaultPrioritization()
	}
	return &Waterfaller{
		meter:          tokens.NewMeter(tokenizer),
		cfg:            cfg,
		prioritization: prioritization,
	}
}

// WithMeter replaces the waterfaller's meter so it shares a model cache
// with an existing Calculator.
func (w *Waterfaller) WithMeter(meter *tokens.Meter) *Waterfaller {
	if meter != nil {
		w.meter = meter
	}
	return w
}

// PerformProportionalTruncation shrinks the truncatable components until
// the whole bundle fits within targetTokens. Fixed content (system
// prompt, conversation messages, response prefill) is never touched.
// Idempotent: input that already fits is returned unchanged with
// WasTruncated false. Never fails for well-formed input.
func (w *Waterfaller) PerformProportionalTruncation(ctx context.Context, components TokenComponents, targetTokens int) TruncatedComponents {
	counter := w.meter.Bound(ctx)
	result := TruncatedComponents{
		TokenComponents: components.normalized(w.cfg.SnippetSeparator),
	}

	fixed := counter.Count(result.SystemPrompt) +
		counter.Count(result.ResponsePrefill) +
		result.messageCount()*w.cfg.MessageOverheadTokens +
		w.cfg.FormattingOverheadTokens
	for _, msg := range result.UserMessages {
		fixed += counter.Count(msg)
	}
	for _, msg := range result.AssistantMessages {
		fixed += counter.Count(msg)
	}

	availableForContent := targetTokens - fixed
	if availableForContent <= 0 {
		// Degenerate: the untouchable content alone cannot fit.
		result.DiffText = ""
		result.DefinitionContext = ""
		result.ReferenceContext = ""
		result.EmbeddingContext = ""
		result.WasTruncated = true
		slog.Warn("fixed prompt content alone exceeds the token target",
			"fixed_tokens", fixed, "target_tokens", targetTokens)
		return result
	}

	total := counter.Count(result.DiffText) +
		counter.Count(result.DefinitionContext) +
		counter.Count(result.ReferenceContext) +
		counter.Count(result.EmbeddingContext)
	if total <= availableForContent {
		return result
	}

	truncator := truncate.New().
		WithCounter(counter).
		WithMarker(w.cfg.TruncationMarker).
		WithCharsPerToken(w.cfg.CharsPerToken)

	remaining := availableForContent
	for _, contentType := range w.prioritization {
		field := result.contextField(contentType)
		if field == nil {
			continue
		}
		if remaining <= 0 {
			// Budget exhausted: no partial preservation past this point.
			if *field != "" {
				*field = ""
				result.WasTruncated = true
			}
			continue
		}

		size := counter.Count(*field)
		if size <= remaining {
			remaining -= size
			continue
		}

		cut, _ := truncator.ToTokenBudget(*field, remaining)
		if contentType == snippet.TypeDiff && cut == "" {
			// Generic truncation would empty the diff; degrade in whole
			// hunks, and failing that, to the changed-file summary.
			cut, _ = truncate.DiffToTokenBudget(counter, *field, remaining)
			slog.Debug("emergency diff truncation applied",
				"budget_tokens", remaining, "result_len", len(cut))
		}
		*field = cut
		result.WasTruncated = true
		remaining = 0
	}

	return result
}
