package snippet

import (
	"strings"

	"github.com/google/uuid"
)

// ContentType categorizes prompt content for truncation priority.
type ContentType string

// The closed set of content types.
const (
	TypeDiff          ContentType = "diff"
	TypeEmbedding     ContentType = "embedding"
	TypeLSPReference  ContentType = "lsp-reference"
	TypeLSPDefinition ContentType = "lsp-definition"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeDiff, TypeEmbedding, TypeLSPReference, TypeLSPDefinition:
		return true
	}
	return false
}

// ContextSnippet is a self-contained, pre-formatted context excerpt
// produced by upstream retrieval. It is read-only to this engine:
// truncation produces a new copy, the original is never mutated.
type ContextSnippet struct {
	// ID uniquely identifies the snippet. Partial and tiny copies
	// derive theirs by suffixing "-partial" or "-tiny".
	ID string

	// Type is the snippet's content type. Snippets carry embedding or
	// LSP types; diff content is handled separately.
	Type ContentType

	// Content is the formatted text blob.
	Content string

	// RelevanceScore orders snippets within a type. LSP definitions
	// score ~1.0, references ~0.9, embeddings 0.0-0.8.
	RelevanceScore float64

	// FilePath, StartLine locate the excerpt in the workspace. Optional.
	FilePath  string
	StartLine int

	// AssociatedHunkIDs links the snippet to the diff hunks that
	// prompted its retrieval. Optional.
	AssociatedHunkIDs []string
}

// New creates a snippet with a generated id.
func New(typ ContentType, content string, relevance float64) ContextSnippet {
	return ContextSnippet{
		ID:             uuid.NewString(),
		Type:           typ,
		Content:        content,
		RelevanceScore: relevance,
	}
}

// ContentPrioritization is a total order over content types: earlier
// entries are preserved longer under token pressure.
type ContentPrioritization []ContentType

// DefaultPrioritization preserves the diff first (it is the subject of
// the prompt), then symbol definitions, references, and finally
// embedding-retrieved context.
func DefaultPrioritization() ContentPrioritization {
	return ContentPrioritization{
		TypeDiff,
		TypeLSPDefinition,
		TypeLSPReference,
		TypeEmbedding,
	}
}

// Priority returns the preservation rank of t: higher ranks are
// preserved longer. Unknown types rank 0.
func (p ContentPrioritization) Priority(t ContentType) int {
	for i, ct := range p {
		if ct == t {
			return len(p) - i
		}
	}
	return 0
}

// Parse converts configured type names into a prioritization, validating
// each entry. An empty input yields the default order.
func Parse(names []string) (ContentPrioritization, bool) {
	if len(names) == 0 {
		return DefaultPrioritization(), true
	}
	out := make(ContentPrioritization, 0, len(names))
	for _, name := range names {
		ct := ContentType(strings.TrimSpace(name))
		if !ct.Valid() {
			return nil, false
		}
		out = append(out, ct)
	}
	return out, true
}

// SplitByType joins snippet contents into one formatted string per type,
// preserving input order within each type. Diff-typed snippets do not
// occur in practice and are folded into the embedding string so no
// content is silently lost.
func SplitByType(snippets []ContextSnippet, separator string) (definitions, references, embeddings string) {
	var defs, refs, embs []string
	for _, s := range snippets {
		switch s.Type {
		case TypeLSPDefinition:
			defs = append(defs, s.Content)
		case TypeLSPReference:
			refs = append(refs, s.Content)
		default:
			embs = append(embs, s.Content)
		}
	}
	return strings.Join(defs, separator),
		strings.Join(refs, separator),
		strings.Join(embs, separator)
}
