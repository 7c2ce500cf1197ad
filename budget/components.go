package budget

import (
	"strings"

	"github.com/randalmurphal/contextfit/snippet"
)

// TokenComponents is the ephemeral per-call bundle of prompt pieces.
// Context content is supplied either as raw snippets or as three
// pre-split strings by type; when both are present the pre-split
// strings win.
type TokenComponents struct {
	// SystemPrompt is the system message. Never truncated here.
	SystemPrompt string

	// DiffText is the unified diff under analysis. Truncatable, with a
	// hunk-aware emergency path.
	DiffText string

	// Snippets are raw retrieved context candidates, an alternative to
	// the three pre-split strings below.
	Snippets []snippet.ContextSnippet

	// DefinitionContext, ReferenceContext and EmbeddingContext are the
	// per-type formatted context strings. Truncatable.
	DefinitionContext string
	ReferenceContext  string
	EmbeddingContext  string

	// UserMessages and AssistantMessages are the conversation turns.
	// Never truncated here.
	UserMessages      []string
	AssistantMessages []string

	// ResponsePrefill is the response-format prefix. Never truncated.
	ResponsePrefill string
}

// normalized folds raw snippets into the per-type context strings.
// Pre-split strings, when present, take precedence and the snippets are
// ignored. Always returns a copy safe to mutate.
func (c TokenComponents) normalized(separator string) TokenComponents {
	out := c
	out.Snippets = nil
	if len(c.Snippets) == 0 {
		return out
	}
	if c.DefinitionContext != "" || c.ReferenceContext != "" || c.EmbeddingContext != "" {
		return out
	}
	out.DefinitionContext, out.ReferenceContext, out.EmbeddingContext =
		snippet.SplitByType(c.Snippets, separator)
	return out
}

// messageCount is the number of discrete message-equivalent units, each
// billed one fixed structural overhead.
func (c TokenComponents) messageCount() int {
	count := len(c.UserMessages) + len(c.AssistantMessages)
	if c.SystemPrompt != "" {
		count++
	}
	if c.ResponsePrefill != "" {
		count++
	}
	return count
}

// contextField returns a pointer to the truncatable field for the given
// content type, or nil for unknown types.
func (c *TokenComponents) contextField(t snippet.ContentType) *string {
	switch t {
	case snippet.TypeDiff:
		return &c.DiffText
	case snippet.TypeLSPDefinition:
		return &c.DefinitionContext
	case snippet.TypeLSPReference:
		return &c.ReferenceContext
	case snippet.TypeEmbedding:
		return &c.EmbeddingContext
	}
	return nil
}

// CombinedContext recombines the truncatable fields into one unified
// context string, skipping empties, in their declaration order: diff,
// definitions, references, embeddings.
func (c TokenComponents) CombinedContext() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{c.DiffText, c.DefinitionContext, c.ReferenceContext, c.EmbeddingContext} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

// TruncatedComponents is the waterfall truncator's result: the same
// shape as TokenComponents with truncatable fields shortened or
// emptied. Every string field always has a defined, possibly empty,
// value.
type TruncatedComponents struct {
	TokenComponents

	// WasTruncated is true if anything was shortened or cleared.
	WasTruncated bool
}
