package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "find me a flight to Lisbon", "find me a flight to Lisbon"},
		{"empty", "", ""},
		{"strips tags", "<b>hello</b> world", "hello world"},
		{"strips script", `<script>alert("x")</script>hi`, "hi"},
		{"strips attributes", `<a href="https://evil.test" onclick="x()">link</a>`, "link"},
		{"trims whitespace", "  padded  ", "padded"},
		{"unicode preserved", "こんにちは 🎭", "こんにちは 🎭"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMessage(tt.input))
		})
	}
}
