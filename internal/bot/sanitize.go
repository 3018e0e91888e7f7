package bot

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Output that is just a long decimal, usually a timing value leaking from the backend
	numericArtifact = regexp.MustCompile(`^-?\d+\.\d{6,}$`)
	thinkBlock      = regexp.MustCompile(`(?is)<think>.*?</think>`)
)

// Sanitize cleans backend output and reports whether it is fit to send.
// Reasoning blocks and wrapping quotes are removed first; the result is
// rejected when empty, shorter than minLen runes, or a bare numeric artifact.
func Sanitize(text string, minLen int) (string, bool) {
	clean := thinkBlock.ReplaceAllString(text, "")
	clean = strings.TrimSpace(clean)
	clean = trimWrappingQuotes(clean)

	if clean == "" {
		return "", false
	}
	if utf8.RuneCountInString(clean) < minLen {
		return "", false
	}
	if numericArtifact.MatchString(clean) {
		return "", false
	}
	return clean, true
}

// trimWrappingQuotes removes one pair of quotes around the whole text. Text such
// as `"omg" she said, "no way"` starts and ends with a quote but is not wrapped.
func trimWrappingQuotes(s string) string {
	pairs := [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}}
	for _, p := range pairs {
		left, right := p[0], p[1]
		if len(s) < len(left)+len(right) || !strings.HasPrefix(s, left) || !strings.HasSuffix(s, right) {
			continue
		}
		inner := s[len(left) : len(s)-len(right)]
		if strings.Contains(inner, left) || strings.Contains(inner, right) {
			return s
		}
		return strings.TrimSpace(inner)
	}
	return s
}
