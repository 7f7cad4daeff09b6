package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WebWorksCollection/csspp/internal/position"
)

func TestUTF16ToByteOffset(t *testing.T) {
	tests := []struct {
		name string
		s    string
		col  int
		want int
	}{
		{"empty string", "", 0, 0},
		{"ascii", "hello world", 5, 5},
		{"ascii at end", "hello", 5, 5},
		{"past the end clamps", "hello", 100, 5},
		{"negative clamps to zero", "hello", -3, 0},
		{"after emoji", "\U0001f44d hello", 2, 4},
		{"emoji in middle", "hello \U0001f44d world", 8, 10},
		{"cjk counts one unit", "颜色: red", 2, 6},
		{"mid surrogate clamps to rune start", "\U0001f44dhello", 1, 0},
		{"mid second surrogate", "\U0001f44d\U0001f3a8hello", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.UTF16ToByteOffset(tt.s, tt.col))
		})
	}
}

func TestStringLengthUTF16(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "color: red", 10},
		{"cjk", "颜色", 2},
		{"emoji counts two units", "\U0001f44d", 2},
		{"mixed", "a\U0001f44db", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.StringLengthUTF16(tt.s))
		})
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	// every rune boundary maps back to itself
	s := "width: \U0001f44d颜色 1px"
	for off := range s {
		col := position.StringLengthUTF16(s[:off])
		assert.Equal(t, off, position.UTF16ToByteOffset(s, col), "offset %d", off)
	}
}
