// Package boilerplate removes non-lyric page artifacts from fetched lyrics.
package boilerplate

import (
	"regexp"
	"strings"
)

const (
	artistPlaceholder = "$ARTIST$"
	titlePlaceholder  = "$TITLE$"
)

// catalog lists the noise patterns in application order.
// Placeholders are replaced with the quoted artist and title before compiling.
var catalog = []string{
	`Translations.+\n`,
	`\[[a-zA-Z]+\]\n`,
	`[0-9]+Embed`,
	`EmbedShare URLCopyEmbedCopy`,
	`Embed$`,
	`You might also like`,
	`See ` + regexp.QuoteMeta(artistPlaceholder) + ` Live`,
	`Get tickets as low as \$[0-9]+`,
	regexp.QuoteMeta(titlePlaceholder) + ` Lyrics`,
	`[0-9]+ Contributors`,
}

// Stripper removes boilerplate spans from lyrics paragraphs.
type Stripper struct{}

// NewStripper creates a new stripper.
func NewStripper() *Stripper {
	return &Stripper{}
}

// Strip removes every catalog match from every paragraph, case-insensitively.
// The output has the same length and order as paragraphs; paragraphs that end
// up empty are kept as empty strings.
func (s *Stripper) Strip(paragraphs []string, artist, title string) []string {
	patterns := compile(artist, title)

	cleaned := make([]string, len(paragraphs))
	for i, paragraph := range paragraphs {
		for _, p := range patterns {
			paragraph = p.ReplaceAllString(paragraph, "")
		}
		cleaned[i] = paragraph
	}
	return cleaned
}

func compile(artist, title string) []*regexp.Regexp {
	replacer := strings.NewReplacer(
		regexp.QuoteMeta(artistPlaceholder), regexp.QuoteMeta(artist),
		regexp.QuoteMeta(titlePlaceholder), regexp.QuoteMeta(title),
	)

	patterns := make([]*regexp.Regexp, 0, len(catalog))
	for _, expr := range catalog {
		patterns = append(patterns, regexp.MustCompile("(?i)"+replacer.Replace(expr)))
	}
	return patterns
}
