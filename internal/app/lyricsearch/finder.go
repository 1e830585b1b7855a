// Package lyricsearch looks up the lyrics of the playing track and checks
// that the database returned the same song.
package lyricsearch

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/lyricpost/internal/app/matching"
	"github.com/osa030/lyricpost/internal/domain/lyrics"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/genius"
	"github.com/osa030/lyricpost/internal/infra/retry"
)

// ErrNotFound is returned when no matching song was found.
var ErrNotFound = errors.New("lyrics not found")

// Source searches a lyrics database.
type Source interface {
	Search(ctx context.Context, title, artist string) (*lyrics.Song, error)
}

// Finder resolves a track to its lyrics.
type Finder struct {
	source  Source
	matcher *matching.Matcher
	logger  zerolog.Logger
}

// NewFinder creates a new finder.
func NewFinder(source Source, matcher *matching.Matcher, logger zerolog.Logger) *Finder {
	return &Finder{source: source, matcher: matcher, logger: logger}
}

// Find returns the lyrics of id. When the first search misses it searches
// once more with the title stripped of qualifiers. A search that ran out of
// retries counts as a miss.
func (f *Finder) Find(ctx context.Context, id track.Identity) (*lyrics.Song, error) {
	title := id.Title
	for attempt := 0; attempt < 2; attempt++ {
		ref := track.Identity{Title: title, Artist: id.Artist}

		song, err := f.source.Search(ctx, ref.Title, ref.Artist)
		if errors.Is(err, retry.ErrExhausted) {
			f.logger.Warn().Err(err).Msgf("lyrics database unreachable for %q by %q", ref.Title, ref.Artist)
			return nil, ErrNotFound
		}
		if err != nil && !errors.Is(err, genius.ErrNotFound) {
			return nil, errors.Wrapf(err, "failed to search lyrics for %s by %s", ref.Title, ref.Artist)
		}
		if song != nil && f.matcher.Matches(track.Identity{Title: song.Title, Artist: song.Artist}, ref) {
			if attempt > 0 {
				f.logger.Info().Msgf("found match for %q by %q", ref.Title, ref.Artist)
			}
			return song, nil
		}

		cleaned := matching.StripQualifiers(title)
		if attempt > 0 || cleaned == title || cleaned == "" {
			break
		}
		f.logger.Info().Msgf("song %q by %q not found, trying %q", title, id.Artist, cleaned)
		title = cleaned
	}

	f.logger.Info().Msgf("song %q by %q not found", title, id.Artist)
	return nil, ErrNotFound
}
