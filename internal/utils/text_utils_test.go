package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	testCases := []struct {
		name     string
		text     string
		maxSize  int
		expected string
	}{
		{name: "no_limit", text: "hello world", maxSize: 0, expected: "hello world"},
		{name: "within_limit", text: "hello", maxSize: 5, expected: "hello"},
		{name: "ascii_cut", text: "hello world", maxSize: 5, expected: "hello" + TruncationMarker},
		{name: "multibyte_boundary", text: "héllo", maxSize: 2, expected: "h" + TruncationMarker},
		{name: "emoji_boundary", text: "a🚀b", maxSize: 4, expected: "a" + TruncationMarker},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tp.TruncateText(tc.text, tc.maxSize)
			assert.Equal(t, tc.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "Title: a\nDescription:\tb", tp.SanitizeText("Title: a\nDescription:\tb"))
	assert.Equal(t, "ab", tp.SanitizeText("a\xffb"))
	assert.Equal(t, "a\uFFFDb", tp.SanitizeText("a\uFFFDb"))
	assert.Equal(t, "ab", tp.SanitizeText("a\x00\x1bb"))
	// e + combining acute composes to a single rune
	assert.Equal(t, "\u00e9", tp.SanitizeText("e\u0301"))
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.ProcessText(strings.Repeat("x", 10)+"\xff", 8)
	assert.Equal(t, strings.Repeat("x", 8)+TruncationMarker, got)
}
