package truncate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/randalmurphal/contextfit/tokens"
)

// buildDiff produces a unified diff for one file with n hunks. Each hunk
// carries a unique sentinel as its last added line so tests can verify
// that retained hunks are complete.
func buildDiff(path string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	b.WriteString("index 1111111..2222222 100644\n")
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "@@ -%d,4 +%d,4 @@ func hunk%d()\n", i*10+1, i*10+1, i)
		b.WriteString(" unchanged line of context here\n")
		b.WriteString("-removed line with some old content\n")
		b.WriteString("+added line with some new content\n")
		fmt.Fprintf(&b, "+sentinel-%d\n", i)
	}
	return strings.TrimRight(b.String(), "\n")
}

func TestDiffToTokenBudget_FitsUnchanged(t *testing.T) {
	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)
	diff := buildDiff("pkg/engine.go", 3)

	result, truncated := DiffToTokenBudget(counter, diff, 100000)
	if truncated {
		t.Error("expected no truncation")
	}
	if result != diff {
		t.Error("expected diff unchanged")
	}
}

func TestDiffToTokenBudget_EmptyDiff(t *testing.T) {
	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)
	result, truncated := DiffToTokenBudget(counter, "", 100)
	if result != "" || truncated {
		t.Errorf("got (%q, %v), expected (\"\", false)", result, truncated)
	}
}

func TestDiffToTokenBudget_KeepsWholeHunkPrefix(t *testing.T) {
	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)
	diff := buildDiff("pkg/engine.go", 20) // well over 400 tokens total

	result, truncated := DiffToTokenBudget(counter, diff, 400)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if got := counter.Count(result); got > 400 {
		t.Errorf("result measures %d tokens, budget 400", got)
	}

	// File headers are preserved.
	if !strings.Contains(result, "diff --git a/pkg/engine.go") {
		t.Error("file header missing from result")
	}

	// Every retained hunk is complete: its header implies its sentinel.
	kept := 0
	for i := 0; i < 20; i++ {
		header := fmt.Sprintf("func hunk%d()", i)
		if strings.Contains(result, header) {
			kept++
			if !strings.Contains(result, fmt.Sprintf("sentinel-%d", i)) {
				t.Errorf("hunk %d retained without its body", i)
			}
		}
	}
	if kept == 0 {
		t.Error("expected at least one complete hunk within budget")
	}
	if kept == 20 {
		t.Error("expected some hunks to be dropped")
	}

	// The walk keeps a prefix: hunk i retained implies hunk i-1 retained.
	for i := 1; i < 20; i++ {
		cur := strings.Contains(result, fmt.Sprintf("sentinel-%d", i))
		prev := strings.Contains(result, fmt.Sprintf("sentinel-%d", i-1))
		if cur && !prev {
			t.Errorf("hunk %d retained but hunk %d dropped: not a prefix", i, i-1)
		}
	}
}

func TestDiffToTokenBudget_MultiFileKeepsFittingHunk(t *testing.T) {
	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)

	var b strings.Builder
	b.WriteString("diff --git a/pkg/first.go b/pkg/first.go\n")
	b.WriteString("--- a/pkg/first.go\n")
	b.WriteString("+++ b/pkg/first.go\n")
	b.WriteString("@@ -1,2 +1,2 @@\n")
	b.WriteString("-old first body\n")
	b.WriteString("+first-sentinel\n")
	b.WriteString("diff --git a/pkg/second.go b/pkg/second.go\n")
	b.WriteString("--- a/pkg/second.go\n")
	b.WriteString("+++ b/pkg/second.go\n")
	b.WriteString("@@ -1,2 +1,2 @@\n")
	b.WriteString("-old second body\n")
	b.WriteString("+second-sentinel\n")
	diff := strings.TrimRight(b.String(), "\n")

	// Budget covers the first file's headers and hunk (~32 tokens) but
	// not the second file's header line. The first hunk must survive
	// intact; the second file's header must not inflate its cost.
	result, truncated := DiffToTokenBudget(counter, diff, 35)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if got := counter.Count(result); got > 35 {
		t.Errorf("result measures %d tokens, budget 35", got)
	}
	if !strings.Contains(result, "diff --git a/pkg/first.go") {
		t.Error("first file header missing")
	}
	if !strings.Contains(result, "first-sentinel") {
		t.Error("first file's complete hunk should be retained")
	}
	if strings.Contains(result, "second-sentinel") {
		t.Error("second file's hunk should be dropped")
	}
	if strings.Contains(result, "Changed files:") {
		t.Errorf("output degraded to the summary floor: %q", result)
	}
}

func TestDiffToTokenBudget_SummaryWhenNoHunkFits(t *testing.T) {
	counter := tokens.NewEstimatingCounter(tokens.DefaultCharsPerToken)

	// One very large hunk (~500+ tokens) against a 100 token budget.
	var b strings.Builder
	b.WriteString("diff --git a/big/file.go b/big/file.go\n")
	b.WriteString("--- a/big/file.go\n")
	b.WriteString("+++ b/big/file.go\n")
	b.WriteString("@@ -1,200 +1,200 @@\n")
	for i := 0; i < 200; i++ {
		b.WriteString("+added line that makes this hunk enormous\n")
	}

	result, truncated := DiffToTokenBudget(counter, b.String(), 100)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if result == "" {
		t.Fatal("summary must never be empty")
	}
	if strings.Contains(result, "@@") {
		t.Error("summary must not contain partial hunks")
	}
	if !strings.Contains(result, "big/file.go") {
		t.Errorf("summary missing changed path: %q", result)
	}
}

func TestSummarizeChangedFiles(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "--- a/pkg/file%02d.go\n", i)
		fmt.Fprintf(&b, "+++ b/pkg/file%02d.go\n", i)
	}
	// Deleted file: only the old path should appear.
	b.WriteString("--- a/pkg/gone.go\n")
	b.WriteString("+++ /dev/null\n")

	summary := SummarizeChangedFiles(b.String())

	if !strings.Contains(summary, "pkg/file00.go") {
		t.Error("first path missing")
	}
	if strings.Contains(summary, "/dev/null") {
		t.Error("summary must skip /dev/null")
	}
	if !strings.Contains(summary, "more files") {
		t.Error("expected overflow note beyond the cap")
	}
	if !strings.Contains(summary, "omitted") {
		t.Error("expected explanatory note")
	}

	shown := strings.Count(summary, "- pkg/")
	if shown != MaxSummaryFiles {
		t.Errorf("summary lists %d paths, expected cap %d", shown, MaxSummaryFiles)
	}
}

func TestSummarizeChangedFiles_MalformedInput(t *testing.T) {
	summary := SummarizeChangedFiles("not a diff at all")
	if summary == "" {
		t.Error("summary must never be empty")
	}
}
