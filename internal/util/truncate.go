package util

import (
	"strings"
	"unicode/utf8"
)

// OutputPreview is the console summary of one tool result.
type OutputPreview struct {
	Text      string
	Lines     int
	Truncated bool
}

// PreviewOutput keeps at most maxLines lines and maxBytes bytes of text,
// after trimming surrounding whitespace. A line that crosses the byte cap
// is cut on a rune boundary. Lines counts the lines of the full text.
func PreviewOutput(text string, maxLines, maxBytes int) OutputPreview {
	text = strings.TrimSpace(text)
	if text == "" {
		return OutputPreview{}
	}
	lines := strings.Split(text, "\n")
	preview := OutputPreview{Lines: len(lines)}

	var b strings.Builder
	for i, line := range lines {
		if maxLines > 0 && i >= maxLines {
			preview.Truncated = true
			break
		}
		if i > 0 {
			line = "\n" + line
		}
		if maxBytes > 0 && b.Len()+len(line) > maxBytes {
			b.WriteString(cutRunes(line, maxBytes-b.Len()))
			preview.Truncated = true
			break
		}
		b.WriteString(line)
	}
	preview.Text = strings.TrimRight(b.String(), "\n")
	return preview
}

// cutRunes returns the longest prefix of s that fits in n bytes without
// splitting a rune.
func cutRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
