package store

import (
	"strings"
)

const (
	// titleWordCap is the maximum number of words carried into a generated
	// conversation title.
	titleWordCap = 4

	// titleRuneCap is the hard length limit on a generated title.
	titleRuneCap = 50

	ellipsis = "..."
)

// GenerateTitle derives a conversation title from the first user message.
// At most titleWordCap whitespace-separated words are kept; the result is
// hard-truncated at titleRuneCap runes. An ellipsis marks any truncation.
func GenerateTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	joined := strings.Join(words, " ")
	truncated := false
	if len(words) > titleWordCap {
		joined = strings.Join(words[:titleWordCap], " ")
		truncated = true
	}

	if runes := []rune(joined); len(runes) > titleRuneCap {
		return string(runes[:titleRuneCap]) + ellipsis
	}
	if truncated {
		return joined + ellipsis
	}
	return joined
}
