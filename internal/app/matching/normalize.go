// Package matching decides whether a lyrics database entry is the track being played.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// "Song Name - 2011 Remaster" -> "Song Name"
	trailingQualifierRegex = regexp.MustCompile(`(?s)\s+-\s.*$`)

	// "Song Name (feat. Someone)" -> "Song Name"
	parenQualifierRegex = regexp.MustCompile(`\s*\([^)]*\)`)

	nonASCIIWordRegex = regexp.MustCompile(`[^A-Za-z0-9 ]+`)

	// Letters that do not decompose into a base letter plus marks.
	ligatureReplacer = strings.NewReplacer(
		"ß", "ss",
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
		"ø", "o", "Ø", "O",
		"ł", "l", "Ł", "L",
		"đ", "d", "Đ", "D",
		"ð", "d", "Ð", "D",
		"þ", "th", "Þ", "TH",
		"ı", "i",
	)
)

// StripQualifiers removes a trailing " - qualifier" and parenthesized qualifiers.
// The result keeps case and punctuation, so it is suitable as a search term.
func StripQualifiers(name string) string {
	name = trailingQualifierRegex.ReplaceAllString(name, "")
	name = parenQualifierRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// Normalize reduces a title or artist name to lowercase ASCII letters, digits and single spaces.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(name string) string {
	name = trailingQualifierRegex.ReplaceAllString(name, "")
	name = parenQualifierRegex.ReplaceAllString(name, "")
	name = transliterate(name)
	name = nonASCIIWordRegex.ReplaceAllString(name, "")
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}

// transliterate maps accented letters to their closest ASCII equivalents.
// Compatibility forms such as fullwidth letters fold to their plain letters.
func transliterate(s string) string {
	s = ligatureReplacer.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
