// internal/util/util.go
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	return string([]rune(text)[:maxRunes]) + "…"
}

// WrapIndent wraps text on word boundaries to width runes per line and
// prefixes every line with indent. Words longer than width stay whole.
func WrapIndent(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if width > 0 && utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, indent+cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	lines = append(lines, indent+cur)
	return strings.Join(lines, "\n")
}
