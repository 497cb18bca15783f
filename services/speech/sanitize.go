package speechsvc

import (
	"regexp"
	"strings"
)

// spoken when sanitization strips everything a slide had
const emptyNarration = "blank slide"

var (
	bulletRe   = regexp.MustCompile(`(?m)^\s*[•◦▪‣*\-–—]+\s*`)
	punctRunRe = regexp.MustCompile(`([.,;:!?])[.,;:!?]+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// sanitizeNarration normalizes deck text before it reaches the speech engine.
// Decorative bullets, punctuation runs and overlong passages are the inputs
// that reliably wedge the engine, so they are shed here instead of retried.
func sanitizeNarration(text string, maxLen int) string {
	s := strings.ReplaceAll(text, "…", ".")
	s = bulletRe.ReplaceAllString(s, "")
	s = punctRunRe.ReplaceAllString(s, "$1")
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if maxLen > 0 {
		if runes := []rune(s); len(runes) > maxLen {
			cut := string(runes[:maxLen])
			// prefer a word boundary near the limit
			if i := strings.LastIndexByte(cut, ' '); i > maxLen/2 {
				cut = cut[:i]
			}
			s = strings.TrimRight(cut, " .,;:!?") + "."
		}
	}

	if s == "" {
		return emptyNarration
	}
	return s
}
