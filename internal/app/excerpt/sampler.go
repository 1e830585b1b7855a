// Package excerpt samples a length-bounded excerpt from lyrics.
package excerpt

import (
	"strings"
	"unicode/utf8"

	"github.com/osa030/lyricpost/internal/domain/lyrics"
)

// Config holds the sampling limits and odds.
type Config struct {
	// MaxLength is the maximum excerpt length in characters, separators included.
	MaxLength int
	// ChanceToAddFirstLine is N in the 1-in-N chance to stop before adding a second line.
	ChanceToAddFirstLine int
	// ChanceToAddLine is N in the 1-in-N chance to stop before adding each further line.
	ChanceToAddLine int
}

// DefaultConfig returns the default sampling configuration.
func DefaultConfig() Config {
	return Config{
		MaxLength:            280,
		ChanceToAddFirstLine: 6,
		ChanceToAddLine:      4,
	}
}

// Excerpt is a sampled run of consecutive lyric lines.
type Excerpt struct {
	Lines     []string
	Paragraph int  // Paragraph index in the document
	Start     int  // Index of the first line among the paragraph's eligible lines
	Shortened bool // The first line was cut at a sentence boundary
	Attempts  int  // Starting lines tried, including the successful one
}

// Text joins the excerpt lines with newlines.
func (e Excerpt) Text() string {
	return strings.Join(e.Lines, "\n")
}

// Sampler draws excerpts from lyrics documents.
type Sampler struct {
	config Config
	rng    Source
}

// NewSampler creates a new sampler.
func NewSampler(config Config, rng Source) *Sampler {
	return &Sampler{
		config: config,
		rng:    rng,
	}
}

// selection tracks which starting lines were tried during one Sample call.
type selection struct {
	tried     []map[int]struct{}
	exhausted map[int]struct{}
}

func newSelection(paragraphs int) *selection {
	s := &selection{
		tried:     make([]map[int]struct{}, paragraphs),
		exhausted: make(map[int]struct{}),
	}
	// One set per paragraph; they must never alias.
	for i := range s.tried {
		s.tried[i] = make(map[int]struct{})
	}
	return s
}

func (s *selection) remainingParagraphs() []int {
	remaining := make([]int, 0, len(s.tried)-len(s.exhausted))
	for i := range s.tried {
		if _, done := s.exhausted[i]; !done {
			remaining = append(remaining, i)
		}
	}
	return remaining
}

func (s *selection) untriedLines(paragraph, count int) []int {
	untried := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if _, done := s.tried[paragraph][i]; !done {
			untried = append(untried, i)
		}
	}
	return untried
}

// Sample picks one excerpt. It returns false when no eligible line fits MaxLength.
func (s *Sampler) Sample(doc lyrics.Document) (Excerpt, bool) {
	state := newSelection(len(doc.Paragraphs))
	attempts := 0

	for len(state.exhausted) < len(doc.Paragraphs) {
		remaining := state.remainingParagraphs()
		if len(remaining) == 0 {
			break
		}
		paragraph := remaining[s.rng.Intn(len(remaining))]

		lines := eligibleLines(doc.Paragraphs[paragraph])
		untried := state.untriedLines(paragraph, len(lines))
		if len(untried) == 0 {
			state.exhausted[paragraph] = struct{}{}
			continue
		}

		start := untried[s.rng.Intn(len(untried))]
		state.tried[paragraph][start] = struct{}{}
		if len(state.tried[paragraph]) == len(lines) {
			state.exhausted[paragraph] = struct{}{}
		}
		attempts++

		first, shortened, ok := s.fit(lines[start])
		if !ok {
			continue
		}

		selected := []string{first}
		if !shortened {
			selected = s.extend(selected, lines, start)
		}

		return Excerpt{
			Lines:     selected,
			Paragraph: paragraph,
			Start:     start,
			Shortened: shortened,
			Attempts:  attempts,
		}, true
	}

	return Excerpt{Attempts: attempts}, false
}

// fit drops trailing sentences until line fits MaxLength.
// A line with nothing left after shortening does not fit.
func (s *Sampler) fit(line string) (string, bool, bool) {
	shortened := false
	for length(line) > s.config.MaxLength {
		idx := strings.LastIndex(line, ".")
		if idx < 0 {
			return "", false, false
		}
		line = line[:idx]
		shortened = true
	}
	if strings.TrimSpace(line) == "" {
		return "", false, false
	}
	return line, shortened, true
}

// extend appends following lines while the draws allow it and the excerpt fits.
func (s *Sampler) extend(selected, lines []string, start int) []string {
	total := length(selected[0])
	for {
		chance := s.config.ChanceToAddLine
		if len(selected) == 1 {
			chance = s.config.ChanceToAddFirstLine
		}
		if s.rng.Intn(chance) == 0 {
			return selected
		}

		next := start + len(selected)
		if next >= len(lines) {
			return selected
		}
		if total+1+length(lines[next]) > s.config.MaxLength {
			return selected
		}
		selected = append(selected, lines[next])
		total += 1 + length(lines[next])
	}
}

// eligibleLines returns the non-empty lines that are not section markers.
func eligibleLines(paragraph []string) []string {
	lines := make([]string, 0, len(paragraph))
	for _, line := range paragraph {
		if line == "" || lyrics.IsSectionMarker(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
