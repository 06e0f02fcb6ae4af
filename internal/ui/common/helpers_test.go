package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short room id", "abc", 10, "abc"},
		{"exact length", "HelloWorld", 10, "HelloWorld"},
		{"long room id truncated", "tournament-final-table", 10, "tournamen…"},
		{"chinese room id truncated", "周末家庭对局", 4, "周末家…"},
		{"empty", "", 10, ""},
		{"emoji handling", "🎲房间名字很长", 5, "🎲房间名…"},
		{"single char limit", "Hello", 1, "…"},
		{"unicode mixed exact", "Hello世界", 7, "Hello世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := TruncateName(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestColorStyle(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"red", "blue", "yellow", "green"} {
		assert.Contains(t, RenderColor(c), c)
	}
	assert.Equal(t, MutedStyle.Render("x"), ColorStyle("purple").Render("x"))
}

func TestJoinColors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MutedStyle.Render("-"), JoinColors(nil))

	out := JoinColors([]string{"red", "blue"})
	assert.Contains(t, out, "red")
	assert.Contains(t, out, "blue")
}
