package speechsvc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNarration(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"clean text untouched", "Welcome to the course.", 100, "Welcome to the course."},
		{"whitespace collapsed", "Welcome\n\tto   the\ncourse", 100, "Welcome to the course"},
		{"bullets stripped", "• First point\n• Second point", 100, "First point Second point"},
		{"dash bullets stripped", "- one\n- two", 100, "one two"},
		{"punctuation run collapsed", "Really?!?!?! Yes!!!", 100, "Really? Yes!"},
		{"ellipsis collapsed", "Well… maybe... not", 100, "Well. maybe. not"},
		{"empty becomes sentinel", "", 100, emptyNarration},
		{"decoration-only becomes sentinel", "•••\n***\n---", 100, emptyNarration},
		{
			"truncated at word boundary",
			"alpha beta gamma delta epsilon zeta", 20,
			"alpha beta gamma.",
		},
		{"no limit when zero", strings.Repeat("a", 300), 0, strings.Repeat("a", 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeNarration(tt.text, tt.maxLen))
		})
	}
}

func TestSanitizeNarrationPathological(t *testing.T) {
	// the kind of deck text that wedges a speech engine outright
	text := "•••!!!" + strings.Repeat("?!", 500) + "\n\n\n" + strings.Repeat("• bullet\n", 200)

	got := sanitizeNarration(text, 100)
	assert.LessOrEqual(t, len([]rune(got)), 101)
	assert.NotContains(t, got, "•")
	assert.NotContains(t, got, "?!?")
	assert.NotContains(t, got, "\n")
}
