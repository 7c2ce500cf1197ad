package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Defaults for every tuning knob.
const (
	// DefaultSafetyMargin scales the model ceiling to reserve headroom
	// for response generation and tokenizer estimation error.
	DefaultSafetyMargin = 0.9

	// DefaultCharsPerToken sizes heuristic cut points. The tokenizer
	// remains the single source of truth.
	DefaultCharsPerToken = 4.0

	// DefaultMessageOverheadTokens is charged once per message-equivalent
	// unit; chat-style models bill structural overhead per message.
	DefaultMessageOverheadTokens = 4

	// DefaultFormattingOverheadTokens covers structural markup not
	// modeled as text.
	DefaultFormattingOverheadTokens = 50

	// DefaultMinPartialTokens is the partial-fit content floor.
	DefaultMinPartialTokens = 50

	// DefaultMinTinyTokens is the tiny-fragment content size.
	DefaultMinTinyTokens = 20

	// DefaultTinyBufferTokens is the tiny-fallback safety buffer.
	DefaultTinyBufferTokens = 10

	// DefaultSnippetSeparator joins selected snippets.
	DefaultSnippetSeparator = "\n\n"

	// DefaultTruncationMarker flags shortened content.
	DefaultTruncationMarker = "\n...[truncated]"
)

// contentTypes is the closed set accepted in Prioritization. Mirrors
// the snippet package; kept local so config stays dependency-free.
var contentTypes = map[string]bool{
	"diff":           true,
	"embedding":      true,
	"lsp-reference":  true,
	"lsp-definition": true,
}

// Config tunes the budgeting engine. Zero values fall back to the
// documented defaults during Validate.
type Config struct {
	// SafetyMargin is the fraction of the model's maximum input tokens
	// made available to the prompt. Must be in (0, 1).
	SafetyMargin float64 `toml:"safety_margin" yaml:"safety_margin" json:"safety_margin"`

	// CharsPerToken is the heuristic character-to-token ratio used to
	// pick truncation cut points. Tunable, not authoritative.
	CharsPerToken float64 `toml:"chars_per_token" yaml:"chars_per_token" json:"chars_per_token"`

	// MessageOverheadTokens is the fixed per-message structural cost.
	MessageOverheadTokens int `toml:"message_overhead_tokens" yaml:"message_overhead_tokens" json:"message_overhead_tokens"`

	// FormattingOverheadTokens is the fixed global markup cost.
	FormattingOverheadTokens int `toml:"formatting_overhead_tokens" yaml:"formatting_overhead_tokens" json:"formatting_overhead_tokens"`

	// MinPartialTokens is the minimum content budget required before a
	// partial snippet prefix is attempted.
	MinPartialTokens int `toml:"min_partial_tokens" yaml:"min_partial_tokens" json:"min_partial_tokens"`

	// MinTinyTokens is the content size of a tiny fragment.
	MinTinyTokens int `toml:"min_tiny_tokens" yaml:"min_tiny_tokens" json:"min_tiny_tokens"`

	// TinyBufferTokens is the extra headroom required before the tiny
	// fallback is attempted.
	TinyBufferTokens int `toml:"tiny_buffer_tokens" yaml:"tiny_buffer_tokens" json:"tiny_buffer_tokens"`

	// SnippetSeparator joins selected snippets; its token cost is
	// charged between already-selected snippets.
	SnippetSeparator string `toml:"snippet_separator" yaml:"snippet_separator" json:"snippet_separator"`

	// TruncationMarker is appended wherever content was cut short.
	TruncationMarker string `toml:"truncation_marker" yaml:"truncation_marker" json:"truncation_marker"`

	// Prioritization orders content types for waterfall truncation:
	// earlier entries are preserved longer. Empty means the default
	// order (diff, lsp-definition, lsp-reference, embedding). When set,
	// it must be a permutation of all four type names.
	Prioritization []string `toml:"prioritization" yaml:"prioritization" json:"prioritization"`
}

// Default returns a Config with every knob at its documented default.
func Default() *Config {
	return &Config{
		SafetyMargin:             DefaultSafetyMargin,
		CharsPerToken:            DefaultCharsPerToken,
		MessageOverheadTokens:    DefaultMessageOverheadTokens,
		FormattingOverheadTokens: DefaultFormattingOverheadTokens,
		MinPartialTokens:         DefaultMinPartialTokens,
		MinTinyTokens:            DefaultMinTinyTokens,
		TinyBufferTokens:         DefaultTinyBufferTokens,
		SnippetSeparator:         DefaultSnippetSeparator,
		TruncationMarker:         DefaultTruncationMarker,
	}
}

// Load reads a config file, merging its contents over the defaults.
// The format is chosen by extension: .yaml/.yml decode as YAML,
// anything else as TOML. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse toml config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate normalizes zero values to defaults and rejects out-of-range
// or incoherent settings.
func (c *Config) Validate() error {
	if c.SafetyMargin == 0 {
		c.SafetyMargin = DefaultSafetyMargin
	}
	if c.SafetyMargin <= 0 || c.SafetyMargin >= 1 {
		return fmt.Errorf("safety_margin must be in (0, 1), got %v", c.SafetyMargin)
	}
	if c.CharsPerToken == 0 {
		c.CharsPerToken = DefaultCharsPerToken
	}
	if c.CharsPerToken < 1 {
		return fmt.Errorf("chars_per_token must be >= 1, got %v", c.CharsPerToken)
	}
	if c.MessageOverheadTokens < 0 {
		return fmt.Errorf("message_overhead_tokens must be >= 0, got %d", c.MessageOverheadTokens)
	}
	if c.FormattingOverheadTokens < 0 {
		return fmt.Errorf("formatting_overhead_tokens must be >= 0, got %d", c.FormattingOverheadTokens)
	}
	if c.MinPartialTokens <= 0 {
		c.MinPartialTokens = DefaultMinPartialTokens
	}
	if c.MinTinyTokens <= 0 {
		c.MinTinyTokens = DefaultMinTinyTokens
	}
	if c.TinyBufferTokens <= 0 {
		c.TinyBufferTokens = DefaultTinyBufferTokens
	}
	if c.SnippetSeparator == "" {
		c.SnippetSeparator = DefaultSnippetSeparator
	}
	if c.TruncationMarker == "" {
		c.TruncationMarker = DefaultTruncationMarker
	}
	if len(c.Prioritization) > 0 {
		if err := validatePrioritization(c.Prioritization); err != nil {
			return err
		}
	}
	return nil
}

// validatePrioritization requires a permutation of all known types.
func validatePrioritization(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !contentTypes[name] {
			return fmt.Errorf("prioritization: unknown content type %q", name)
		}
		if seen[name] {
			return fmt.Errorf("prioritization: duplicate content type %q", name)
		}
		seen[name] = true
	}
	if len(seen) != len(contentTypes) {
		return fmt.Errorf("prioritization must list all %d content types, got %d", len(contentTypes), len(seen))
	}
	return nil
}

// Schema reflects a JSON schema for Config, for editor validation and
// documentation tooling.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	return reflector.Reflect(&Config{})
}
