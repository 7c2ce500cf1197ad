package tokens

import "unicode/utf8"

// DefaultCharsPerToken is the character-to-token ratio assumed when no
// real tokenizer is available: roughly 4 characters per token for
// English prose and code.
const DefaultCharsPerToken = 4.0

// Counter measures text in model tokens.
type Counter interface {
	// Count returns the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit reports whether the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter approximates token counts from rune length. It is
// the zero-dependency fallback behind Meter and the default counter for
// the truncation primitives.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token. Values <= 0
	// count as DefaultCharsPerToken.
	CharsPerToken float64
}

// NewEstimatingCounter creates a counter with the given ratio. A ratio
// <= 0 selects the default (4.0).
func NewEstimatingCounter(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count approximates the token count of text, rounded to nearest.
// Runes are counted rather than bytes so multi-byte characters weigh
// the same as ASCII.
func (c *EstimatingCounter) Count(text string) int {
	ratio := c.CharsPerToken
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}
	return int(float64(utf8.RuneCountInString(text))/ratio + 0.5)
}

// FitsInLimit reports whether the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// EstimateTokens approximates the token count of text at the default
// ratio.
func EstimateTokens(text string) int {
	return int(float64(utf8.RuneCountInString(text))/DefaultCharsPerToken + 0.5)
}
