// Package lyrics provides the lyrics domain entities.
package lyrics

import "strings"

// Song is a lyrics database entry.
type Song struct {
	Title  string // Title as listed by the lyrics database
	Artist string // Primary artist as listed by the lyrics database
	URL    string // Page URL
	Lyrics string // Raw lyrics text, paragraphs separated by blank lines
}

// Paragraphs splits the raw lyrics on blank-line boundaries.
func (s *Song) Paragraphs() []string {
	return SplitParagraphs(s.Lyrics)
}

// Document is lyrics text split into paragraphs of lines.
type Document struct {
	Paragraphs [][]string
}

// SplitParagraphs splits text on blank-line boundaries.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n\n")
}

// NewDocument splits each paragraph into lines.
func NewDocument(paragraphs []string) Document {
	doc := Document{Paragraphs: make([][]string, len(paragraphs))}
	for i, p := range paragraphs {
		doc.Paragraphs[i] = strings.Split(p, "\n")
	}
	return doc
}

// Parse builds a document from raw lyrics text.
func Parse(text string) Document {
	return NewDocument(SplitParagraphs(text))
}

// IsSectionMarker reports whether the line is a bracketed section header such as "[Chorus]".
func IsSectionMarker(line string) bool {
	return strings.HasPrefix(line, "[")
}

// LineCount returns the total number of lines in the document.
func (d Document) LineCount() int {
	n := 0
	for _, p := range d.Paragraphs {
		n += len(p)
	}
	return n
}
