package truncate

import (
	"unicode/utf8"

	"github.com/randalmurphal/contextfit/tokens"
)

// DefaultMarker is appended to content that was cut short.
const DefaultMarker = "\n...[truncated]"

// Truncator cuts text to fit within token budgets without splitting a
// line or leaving a code fence unterminated.
type Truncator struct {
	counter       tokens.Counter
	marker        string
	charsPerToken float64
}

// New creates a truncator with the default estimating counter and marker.
func New() *Truncator {
	return &Truncator{
		counter:       tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken),
		marker:        DefaultMarker,
		charsPerToken: tokens.DefaultCharsPerToken,
	}
}

// WithCounter sets a custom token counter.
func (t *Truncator) WithCounter(counter tokens.Counter) *Truncator {
	t.counter = counter
	return t
}

// WithMarker sets a custom truncation marker.
func (t *Truncator) WithMarker(marker string) *Truncator {
	t.marker = marker
	return t
}

// WithCharsPerToken sets the ratio used to pick the initial cut point.
// The ratio is a tunable heuristic only; the counter remains the single
// source of truth. If charsPerToken is <= 0, the default (4.0) is used.
func (t *Truncator) WithCharsPerToken(charsPerToken float64) *Truncator {
	if charsPerToken <= 0 {
		charsPerToken = tokens.DefaultCharsPerToken
	}
	t.charsPerToken = charsPerToken
	return t
}

// Marker returns the truncator's marker.
func (t *Truncator) Marker() string {
	return t.marker
}

// ToTokenBudget reduces text to fit within maxTokens, cutting at line
// boundaries and appending the marker. The initial cut point comes from
// the chars-per-token ratio; the result is re-measured and the character
// budget strictly shrinks until the measured count fits, so the loop
// always converges. Returns "" when nothing can fit, and whether
// truncation occurred.
func (t *Truncator) ToTokenBudget(text string, maxTokens int) (string, bool) {
	if text == "" {
		return "", false
	}
	if maxTokens <= 0 {
		return "", true
	}
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	markerTokens := t.counter.Count(t.marker)
	target := maxTokens - markerTokens
	if target <= 0 {
		return "", true
	}

	charBudget := int(float64(target) * t.charsPerToken)
	for charBudget > 0 {
		cut := CutAtLineBoundary(text, charBudget)
		if cut == "" {
			return "", true
		}
		candidate := CloseDanglingFence(cut) + t.marker
		if t.counter.FitsInLimit(candidate, maxTokens) {
			return candidate, true
		}
		// Shrink strictly below the last cut so the loop terminates.
		charBudget = charBudget * 3 / 4
		if next := utf8.RuneCountInString(cut) - 1; next < charBudget {
			charBudget = next
		}
	}
	return "", true
}
