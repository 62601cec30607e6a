package stringutils_test

import (
	"testing"

	"github.com/habiliai/edudash/internal/stringutils"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "See you at 10", "See you at 10"},
		{"surrounding space", "  hi \n", "hi"},
		{"null byte", "Hel\x00lo", "Hello"},
		{"control characters", "a\x01b\x7fc\u0085d", "abcd"},
		{"keeps newlines and tabs", "line one\n\tline two", "line one\n\tline two"},
		{"invalid utf8", "ok\xffok", "okok"},
		{"emoji", "👍 thanks", "👍 thanks"},
		{"only controls", "\x00\x01", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stringutils.CleanText(tc.input))
		})
	}
}

func TestEllipsis(t *testing.T) {
	assert.Equal(t, "short", stringutils.Ellipsis("short", 10))
	assert.Equal(t, "abcd…", stringutils.Ellipsis("abcdefgh", 5))
	assert.Equal(t, "안녕…", stringutils.Ellipsis("안녕하세요", 3))
	assert.Equal(t, "", stringutils.Ellipsis("abc", 0))
}
