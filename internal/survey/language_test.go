package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupLanguage(t *testing.T) {
	tests := []struct {
		input string
		code  string
		ok    bool
	}{
		{"English", "en", true},
		{"  spanish ", "es", true},
		{"Español", "es", true},
		{"हिंदी", "hi", true},
		{"中文", "zh", true},
		{"FRANÇAIS", "fr", true},
		{"klingon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		lang, ok := LookupLanguage(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.code, lang.Code, tt.input)
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, in := range []string{"yes", "Yes!", "sí", "si", "हाँ", "是", "Oui."} {
		assert.True(t, IsAffirmative(in), in)
	}
	for _, in := range []string{"no", "maybe", "", "yes please"} {
		assert.False(t, IsAffirmative(in), in)
	}
}
