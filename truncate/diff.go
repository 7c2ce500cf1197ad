package truncate

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/contextfit/tokens"
)

// MaxSummaryFiles caps the changed-file list in the fallback summary.
const MaxSummaryFiles = 10

// diffOmittedNote explains why no hunk bodies are present.
const diffOmittedNote = "[diff content omitted: too large for the available token budget]"

// isHunkHeader reports whether the line starts a new hunk.
func isHunkHeader(line string) bool {
	return strings.HasPrefix(line, "@@")
}

// isFileHeader reports whether the line belongs to a file header block.
// These lines are preserved ahead of hunk bodies.
func isFileHeader(line string) bool {
	return strings.HasPrefix(line, "diff --git") ||
		strings.HasPrefix(line, "index ") ||
		strings.HasPrefix(line, "+++") ||
		strings.HasPrefix(line, "---")
}

// isHunkBody reports whether the line can belong to a hunk body:
// context, additions, removals, or the "\ No newline at end of file"
// marker. "---"/"+++" lines are ambiguous (a removal whose content
// starts with "--" renders as "---"), so they count as body here and
// only the unambiguous header forms end an open hunk.
func isHunkBody(line string) bool {
	if line == "" {
		return true
	}
	switch line[0] {
	case ' ', '+', '-', '\\':
		return true
	}
	return false
}

// DiffToTokenBudget reduces unified diff text to fit within maxTokens,
// keeping the maximal prefix of complete hunks. The walk stops at the
// first unit that no longer fits; nothing partial is ever emitted. If
// not even one whole hunk fits, the result is a minimal summary of
// changed file paths instead of an empty string. Returns the diff and
// whether truncation occurred.
func DiffToTokenBudget(counter tokens.Counter, diff string, maxTokens int) (string, bool) {
	if diff == "" {
		return "", false
	}
	if maxTokens > 0 && counter.FitsInLimit(diff, maxTokens) {
		return diff, false
	}
	if maxTokens <= 0 {
		return SummarizeChangedFiles(diff), true
	}

	var kept []string
	used := 0

	// commit adds a unit (a header line or a whole hunk) if it fits.
	commit := func(lines []string) bool {
		text := strings.Join(lines, "\n") + "\n"
		cost := counter.Count(text)
		if used+cost > maxTokens {
			return false
		}
		kept = append(kept, lines...)
		used += cost
		return true
	}

	var hunk []string
	stopped := false
	for _, line := range strings.Split(diff, "\n") {
		if isHunkHeader(line) {
			if len(hunk) > 0 && !commit(hunk) {
				stopped = true
				break
			}
			hunk = []string{line}
			continue
		}
		// The next file's header block ends the open hunk; the hunk is
		// committed as its own unit so its cost is never inflated by
		// header lines that belong to the following file.
		if len(hunk) > 0 && isFileHeader(line) && !isHunkBody(line) {
			if !commit(hunk) {
				stopped = true
				break
			}
			hunk = nil
		}
		if len(hunk) > 0 {
			hunk = append(hunk, line)
			continue
		}
		// File headers and metadata outside any hunk.
		if !commit([]string{line}) {
			stopped = true
			break
		}
	}
	if !stopped && len(hunk) > 0 {
		// Final hunk; discarded when it does not fit.
		commit(hunk)
	}

	if countKeptHunks(kept) == 0 {
		return SummarizeChangedFiles(diff), true
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n"), true
}

// countKeptHunks counts hunk headers in the retained lines.
func countKeptHunks(lines []string) int {
	count := 0
	for _, line := range lines {
		if isHunkHeader(line) {
			count++
		}
	}
	return count
}

// SummarizeChangedFiles emits a deduplicated, capped list of the file
// paths touched by the diff plus an explanatory note. It never returns
// an empty string, even for malformed input.
func SummarizeChangedFiles(diff string) string {
	seen := make(map[string]struct{})
	var paths []string
	for _, line := range strings.Split(diff, "\n") {
		path := changedPath(line)
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	var b strings.Builder
	if len(paths) > 0 {
		b.WriteString("Changed files:\n")
		shown := paths
		if len(shown) > MaxSummaryFiles {
			shown = shown[:MaxSummaryFiles]
		}
		for _, path := range shown {
			b.WriteString("- ")
			b.WriteString(path)
			b.WriteString("\n")
		}
		if overflow := len(paths) - len(shown); overflow > 0 {
			fmt.Fprintf(&b, "... and %d more files\n", overflow)
		}
	}
	b.WriteString(diffOmittedNote)
	return b.String()
}

// changedPath extracts the file path from a "+++ b/..." or "--- a/..."
// line, skipping /dev/null entries for added or deleted files.
func changedPath(line string) string {
	var rest string
	switch {
	case strings.HasPrefix(line, "+++ "):
		rest = strings.TrimPrefix(line, "+++ ")
	case strings.HasPrefix(line, "--- "):
		rest = strings.TrimPrefix(line, "--- ")
	default:
		return ""
	}
	rest = strings.TrimSpace(rest)
	if rest == "/dev/null" || rest == "" {
		return ""
	}
	rest = strings.TrimPrefix(rest, "a/")
	rest = strings.TrimPrefix(rest, "b/")
	return rest
}
