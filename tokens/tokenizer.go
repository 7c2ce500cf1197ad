package tokens

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// ErrTokenizerUnavailable indicates the model tokenizer could not be
// reached or no model is resolvable. Callers inside this module never
// propagate it; they degrade to estimation instead.
var ErrTokenizerUnavailable = errors.New("tokenizer unavailable")

// ModelInfo describes the active model as reported by the tokenizer.
type ModelInfo struct {
	// Name is the provider-specific model name, if known.
	Name string

	// Family is the normalized model family (FamilyClaude, FamilyGPT, ...).
	// Used for logging and heuristics only.
	Family string

	// MaxInputTokens is the model's maximum input context window.
	MaxInputTokens int
}

// DefaultModelInfo is the conservative fallback used when the tokenizer
// cannot report the active model.
func DefaultModelInfo() ModelInfo {
	return ModelInfo{
		Family:         FamilyUnknown,
		MaxInputTokens: DefaultModelTokens,
	}
}

// Tokenizer is the boundary to the real model tokenizer. Implementations
// may be backed by I/O (a sidecar process, an RPC) and may fail; Meter
// absorbs both.
type Tokenizer interface {
	// CountTokens returns the exact token count of text for the active model.
	CountTokens(ctx context.Context, text string) (int, error)

	// ModelInfo returns metadata about the active model.
	ModelInfo(ctx context.Context) (ModelInfo, error)
}

// Meter measures text against the active model, degrading to the
// estimating counter whenever the tokenizer is unavailable. The model
// metadata is cached per Meter instance after the first successful
// fetch; concurrent calls may race benignly on the cache (both racers
// store equivalent values) and a failed fetch is retried on the next
// call.
type Meter struct {
	tokenizer Tokenizer
	fallback  *EstimatingCounter
	model     atomic.Pointer[ModelInfo]
}

// NewMeter creates a Meter backed by the given tokenizer.
// A nil tokenizer is allowed; the Meter then always estimates.
func NewMeter(tokenizer Tokenizer) *Meter {
	return &Meter{
		tokenizer: tokenizer,
		fallback:  NewEstimatingCounter(DefaultCharsPerToken),
	}
}

// Count returns the token count of text. It never fails: if the
// tokenizer is unavailable the estimating counter answers instead.
func (m *Meter) Count(ctx context.Context, text string) int {
	if text == "" {
		return 0
	}
	if m.tokenizer != nil {
		count, err := m.tokenizer.CountTokens(ctx, text)
		if err == nil && count >= 0 {
			return count
		}
		slog.Debug("tokenizer count failed, falling back to estimation",
			"error", err, "text_len", len(text))
	}
	return m.fallback.Count(text)
}

// Model returns metadata about the active model, cached after the first
// successful fetch. When no tokenizer is configured or the fetch fails,
// the conservative default is returned and the fetch is retried on the
// next call.
func (m *Meter) Model(ctx context.Context) ModelInfo {
	if cached := m.model.Load(); cached != nil {
		return *cached
	}
	if m.tokenizer == nil {
		return DefaultModelInfo()
	}
	info, err := m.tokenizer.ModelInfo(ctx)
	if err != nil || info.MaxInputTokens <= 0 {
		slog.Warn("model metadata unavailable, using conservative defaults",
			"error", err)
		return DefaultModelInfo()
	}
	if info.Family == "" {
		info.Family = Family(info.Name)
	}
	m.model.Store(&info)
	return info
}

// Bound returns a synchronous Counter view of the Meter with the given
// context captured. Truncation primitives that operate on Counter can
// consume the real tokenizer through it.
func (m *Meter) Bound(ctx context.Context) Counter {
	return boundCounter{ctx: ctx, meter: m}
}

type boundCounter struct {
	ctx   context.Context
	meter *Meter
}

func (b boundCounter) Count(text string) int {
	return b.meter.Count(b.ctx, text)
}

func (b boundCounter) FitsInLimit(text string, limit int) bool {
	return b.Count(text) <= limit
}
