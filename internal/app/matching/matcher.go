package matching

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/xrash/smetrics"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// Config holds the matcher thresholds.
type Config struct {
	// RequiredArtistScore is the maximum artist distance that still matches.
	RequiredArtistScore float64
	// RequiredSongScore is the maximum title distance that still matches.
	RequiredSongScore float64
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		RequiredArtistScore: 0.2,
		RequiredSongScore:   0.3,
	}
}

// Matcher compares lyrics database entries against the playing track.
type Matcher struct {
	config Config
	logger zerolog.Logger
}

// NewMatcher creates a new matcher. Rejections are reported to logger at debug level.
func NewMatcher(config Config, logger zerolog.Logger) *Matcher {
	return &Matcher{
		config: config,
		logger: logger,
	}
}

// Matches reports whether candidate is the same song as reference.
// The artist must match tightly; the title tolerates more noise and also
// matches when one normalized title contains the other.
func (m *Matcher) Matches(candidate, reference track.Identity) bool {
	candArtist, refArtist := Normalize(candidate.Artist), Normalize(reference.Artist)
	artistDistance := Distance(candArtist, refArtist)
	if artistDistance > m.config.RequiredArtistScore {
		m.logger.Debug().Msgf("artist mismatch: candidate=%q reference=%q score=%.3f",
			candidate.Artist, reference.Artist, artistDistance)
		return false
	}

	candTitle, refTitle := Normalize(candidate.Title), Normalize(reference.Title)
	titleDistance := Distance(candTitle, refTitle)
	if titleDistance <= m.config.RequiredSongScore {
		return true
	}
	if contains(candTitle, refTitle) {
		return true
	}

	m.logger.Debug().Msgf("title mismatch: candidate=%q reference=%q score=%.3f",
		candidate.Title, reference.Title, titleDistance)
	return false
}

// Distance returns the indel edit distance between a and b scaled to [0,1],
// where 0 means identical. It equals 1 - 2*LCS/(len(a)+len(b)).
func Distance(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	// A substitution costs as much as a delete plus an insert.
	d := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return float64(d) / float64(total)
}

func contains(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
