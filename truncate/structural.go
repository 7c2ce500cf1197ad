package truncate

import "strings"

// fenceMarker opens and closes a markdown code block.
const fenceMarker = "```"

// CutAtLineBoundary returns the longest prefix of text that is at most
// maxChars runes long and ends at a line boundary. The trailing newline
// is not included. Returns text unchanged if it already fits, and ""
// when not even the first line fits: a line is never split.
func CutAtLineBoundary(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := string(runes[:maxChars])
	idx := strings.LastIndex(cut, "\n")
	if idx < 0 {
		return ""
	}
	return cut[:idx]
}

// CountFences returns the number of fence lines in text. A fence line
// is one whose first non-blank characters are ``` (with or without an
// info string).
func CountFences(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), fenceMarker) {
			count++
		}
	}
	return count
}

// HasOpenFence reports whether text ends inside an unterminated code
// fence (an odd number of fence lines).
func HasOpenFence(text string) bool {
	return CountFences(text)%2 == 1
}

// CloseDanglingFence appends a closing fence when text ends inside an
// open code block, and returns text unchanged otherwise.
func CloseDanglingFence(text string) string {
	if text != "" && HasOpenFence(text) {
		return text + "\n" + fenceMarker
	}
	return text
}

// FenceAwareCut cuts text to at most maxChars runes at a line boundary
// and re-closes any code fence the cut left open. The closing fence may
// push the result slightly past maxChars; callers re-measure.
func FenceAwareCut(text string, maxChars int) string {
	return CloseDanglingFence(CutAtLineBoundary(text, maxChars))
}
