package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing hyphen qualifier",
			input:    "Song Name - Remix",
			expected: "song name",
		},
		{
			name:     "remaster year after hyphen",
			input:    "Bohemian Rhapsody - 2011 Remaster",
			expected: "bohemian rhapsody",
		},
		{
			name:     "parenthesized qualifier",
			input:    "Café del Mar (Remastered)",
			expected: "cafe del mar",
		},
		{
			name:     "parenthesized qualifier in the middle",
			input:    "Song (feat. Someone) Reprise",
			expected: "song reprise",
		},
		{
			name:     "punctuation dropped",
			input:    "AC/DC",
			expected: "acdc",
		},
		{
			name:     "apostrophe dropped",
			input:    "Guns N' Roses",
			expected: "guns n roses",
		},
		{
			name:     "ligature transliterated",
			input:    "Straße",
			expected: "strasse",
		},
		{
			name:     "scandinavian letters",
			input:    "Sigur Rós & Ørnulf",
			expected: "sigur ros ornulf",
		},
		{
			name:     "fullwidth letters folded",
			input:    "Ｆｕｌｌ Ｍｏｏｎ",
			expected: "full moon",
		},
		{
			name:     "compatibility ligature folded",
			input:    "ﬁre",
			expected: "fire",
		},
		{
			name:     "inner spaces collapsed",
			input:    "a -(x) b",
			expected: "a b",
		},
		{
			name:     "hyphen and parentheses combined",
			input:    "Señor - Live at Wembley (2009)",
			expected: "senor",
		},
		{
			name:     "hyphen without spaces kept as word join",
			input:    "Jay-Z",
			expected: "jayz",
		},
		{
			name:     "surrounding whitespace",
			input:    "  Hello, World!  ",
			expected: "hello world",
		},
		{
			name:     "non latin script removed entirely",
			input:    "東京",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"Song Name - Remix",
		"Beyoncé (Live) - Bonus",
		"  (only parens)  ",
		"- leading hyphen",
		"trailing hyphen -",
		"a - b - c",
		"Ünïcödé Straße Æther",
		"((nested) parens)",
		"東京 Tokyo",
		"tab\tseparated\nnewline - x",
		"Ｆｕｌｌ  Ｍｏｏｎ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestStripQualifiers(t *testing.T) {
	assert.Equal(t, "Song Name", StripQualifiers("Song Name - Remix"))
	assert.Equal(t, "Café del Mar", StripQualifiers("Café del Mar (Remastered)"))
	assert.Equal(t, "AC/DC", StripQualifiers("AC/DC"))
	assert.Equal(t, "", StripQualifiers(""))
}
