package budget

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/contextfit/config"
	"github.com/randalmurphal/contextfit/tokens"
)

// TokenAllocation is a computed snapshot of where the token budget
// goes. TotalRequiredTokens is always the literal sum of every other
// count field, and ContextAllocationTokens is never negative.
type TokenAllocation struct {
	// Per-component token counts.
	SystemPromptTokens     int
	DiffTokens             int
	DefinitionTokens       int
	ReferenceTokens        int
	EmbeddingTokens        int
	UserMessageTokens      int
	AssistantMessageTokens int
	PrefillTokens          int

	// MessageOverheadTokens is the fixed per-message structural cost,
	// summed over all message-equivalent units.
	MessageOverheadTokens int

	// OtherTokens is the fixed formatting overhead.
	OtherTokens int

	// TotalAvailableTokens is the model ceiling after the safety margin.
	TotalAvailableTokens int

	// TotalRequiredTokens is the sum of all count fields above.
	TotalRequiredTokens int

	// ContextAllocationTokens is the residual budget for context
	// content: max(0, available minus everything that is not context).
	ContextAllocationTokens int

	// FitsWithinLimit is true when everything fits as-is.
	FitsWithinLimit bool
}

// Calculator computes token allocations. It is safe for concurrent use;
// the only shared state is the Meter's benign model-metadata cache.
type Calculator struct {
	meter *tokens.Meter
	cfg   *config.Config
}

// NewCalculator creates a calculator measuring through the given
// tokenizer. A nil tokenizer degrades every measurement to estimation;
// a nil config uses the defaults.
func NewCalculator(tokenizer tokens.Tokenizer, cfg *config.Config) *Calculator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Calculator{
		meter: tokens.NewMeter(tokenizer),
		cfg:   cfg,
	}
}

// Meter exposes the calculator's meter so downstream stages (snippet
// selection, waterfall truncation) share the model-metadata cache.
func (c *Calculator) Meter() *tokens.Meter {
	return c.meter
}

// CalculateTokenAllocation measures every component and computes the
// allocation. Deterministic given the tokenizer's answers; tokenizer
// failure degrades to conservative defaults instead of propagating.
func (c *Calculator) CalculateTokenAllocation(ctx context.Context, components TokenComponents) TokenAllocation {
	components = components.normalized(c.cfg.SnippetSeparator)

	var alloc TokenAllocation
	alloc.SystemPromptTokens = c.meter.Count(ctx, components.SystemPrompt)
	alloc.DiffTokens = c.meter.Count(ctx, components.DiffText)
	alloc.DefinitionTokens = c.meter.Count(ctx, components.DefinitionContext)
	alloc.ReferenceTokens = c.meter.Count(ctx, components.ReferenceContext)
	alloc.EmbeddingTokens = c.meter.Count(ctx, components.EmbeddingContext)
	for _, msg := range components.UserMessages {
		alloc.UserMessageTokens += c.meter.Count(ctx, msg)
	}
	for _, msg := range components.AssistantMessages {
		alloc.AssistantMessageTokens += c.meter.Count(ctx, msg)
	}
	alloc.PrefillTokens = c.meter.Count(ctx, components.ResponsePrefill)

	alloc.MessageOverheadTokens = components.messageCount() * c.cfg.MessageOverheadTokens
	alloc.OtherTokens = c.cfg.FormattingOverheadTokens

	model := c.meter.Model(ctx)
	alloc.TotalAvailableTokens = int(float64(model.MaxInputTokens) * c.cfg.SafetyMargin)

	alloc.TotalRequiredTokens = alloc.SystemPromptTokens +
		alloc.DiffTokens +
		alloc.DefinitionTokens +
		alloc.ReferenceTokens +
		alloc.EmbeddingTokens +
		alloc.UserMessageTokens +
		alloc.AssistantMessageTokens +
		alloc.PrefillTokens +
		alloc.MessageOverheadTokens +
		alloc.OtherTokens

	contextTokens := alloc.DefinitionTokens + alloc.ReferenceTokens + alloc.EmbeddingTokens
	nonContext := alloc.TotalRequiredTokens - contextTokens
	alloc.ContextAllocationTokens = alloc.TotalAvailableTokens - nonContext
	if alloc.ContextAllocationTokens < 0 {
		alloc.ContextAllocationTokens = 0
	}

	alloc.FitsWithinLimit = alloc.TotalRequiredTokens <= alloc.TotalAvailableTokens

	slog.Debug("token allocation computed",
		"model_family", model.Family,
		"available", alloc.TotalAvailableTokens,
		"required", alloc.TotalRequiredTokens,
		"context_allocation", alloc.ContextAllocationTokens,
		"fits", alloc.FitsWithinLimit)

	return alloc
}
