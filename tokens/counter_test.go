package tokens

import (
	"strings"
	"testing"
)

func TestEstimatingCounter_Count(t *testing.T) {
	counter := NewEstimatingCounter(DefaultCharsPerToken)

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "empty string",
			text:     "",
			expected: 0,
		},
		{
			name:     "exact multiple of ratio",
			text:     strings.Repeat("a", 40),
			expected: 10,
		},
		{
			name:     "rounds to nearest",
			text:     strings.Repeat("a", 6), // 1.5 tokens
			expected: 2,
		},
		{
			name:     "counts runes not bytes",
			text:     strings.Repeat("世", 8), // 8 runes, 24 bytes
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.Count(tt.text); got != tt.expected {
				t.Errorf("Count(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestEstimatingCounter_FitsInLimit(t *testing.T) {
	counter := NewEstimatingCounter(DefaultCharsPerToken)
	text := strings.Repeat("a", 40) // 10 tokens

	if !counter.FitsInLimit(text, 10) {
		t.Error("expected text to fit exactly at its own count")
	}
	if counter.FitsInLimit(text, 9) {
		t.Error("expected text not to fit below its count")
	}
}

func TestNewEstimatingCounter_Ratio(t *testing.T) {
	counter := NewEstimatingCounter(2.0)
	if got := counter.Count(strings.Repeat("a", 20)); got != 10 {
		t.Errorf("Count with 2.0 ratio = %d, expected 10", got)
	}

	// Non-positive ratios clamp to the default.
	counter = NewEstimatingCounter(-1)
	if counter.CharsPerToken != DefaultCharsPerToken {
		t.Errorf("CharsPerToken = %v, expected default %v", counter.CharsPerToken, DefaultCharsPerToken)
	}

	// A zero-value struct still counts at the default ratio.
	var zero EstimatingCounter
	if got := zero.Count(strings.Repeat("a", 40)); got != 10 {
		t.Errorf("zero-value Count = %d, expected 10", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("EstimateTokens = %d, expected 100", got)
	}
}
