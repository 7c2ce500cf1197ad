package tokens

import "strings"

// DefaultModelTokens is the context window assumed when no model is
// resolvable. Deliberately conservative.
const DefaultModelTokens = 100000

// Model family names. The family is used for logging and heuristics
// only, never for correctness-critical branching.
const (
	FamilyClaude  = "claude"
	FamilyGPT     = "gpt"
	FamilyGemini  = "gemini"
	FamilyUnknown = "unknown"
)

// ModelLimits contains context window sizes for common models.
var ModelLimits = map[string]int{
	// Claude 4 models
	"claude-opus-4":   200000,
	"claude-sonnet-4": 200000,

	// Claude 3.5 models
	"claude-3.5-sonnet": 200000,
	"claude-3.5-haiku":  200000,

	// Claude 3 models
	"claude-3-opus":   200000,
	"claude-3-sonnet": 200000,
	"claude-3-haiku":  200000,

	// OpenAI models
	"gpt-4o":      128000,
	"gpt-4o-mini": 128000,
	"gpt-4.1":     128000,

	// Gemini models
	"gemini-2.5-pro":   1000000,
	"gemini-2.5-flash": 1000000,

	// Default fallback
	"default": DefaultModelTokens,
}

// Limit returns the context window for a model, or the conservative
// default if the model is not known.
func Limit(model string) int {
	if limit, ok := ModelLimits[model]; ok {
		return limit
	}
	return ModelLimits["default"]
}

// Family normalizes a model name to its family.
func Family(model string) string {
	name := strings.ToLower(model)
	switch {
	case strings.Contains(name, "claude"), strings.Contains(name, "opus"),
		strings.Contains(name, "sonnet"), strings.Contains(name, "haiku"):
		return FamilyClaude
	case strings.Contains(name, "gpt"), strings.HasPrefix(name, "o1"),
		strings.Contains(name, "codex"):
		return FamilyGPT
	case strings.Contains(name, "gemini"):
		return FamilyGemini
	default:
		return FamilyUnknown
	}
}
