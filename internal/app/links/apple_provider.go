package links

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/app/matching"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/itunes"
)

type AppleProviderConfig struct {
	// IncludeAlbum adds the album name to the search terms.
	IncludeAlbum *bool `yaml:"include_album" mapstructure:"include_album" default:"true"`
}

// AppleProvider links to the song on Apple Music through the iTunes Search API.
// A search without results is retried once with cleaned title and album.
type AppleProvider struct {
	apple  AppleClient
	config *AppleProviderConfig
}

// NewAppleProvider creates a new AppleProvider.
func NewAppleProvider(apple AppleClient, settings map[string]any) (*AppleProvider, error) {
	if apple == nil {
		return nil, errors.New("apple client is required")
	}

	var config AppleProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	return &AppleProvider{apple: apple, config: &config}, nil
}

func (p *AppleProvider) Name() string {
	return "apple"
}

func (p *AppleProvider) Link(ctx context.Context, song track.NowPlaying) (string, error) {
	album := ""
	if p.config.IncludeAlbum == nil || *p.config.IncludeAlbum {
		album = song.Album
	}

	terms := []string{song.Artist, song.Title, album}
	u, err := p.lookup(ctx, terms)
	if err != nil || u != "" {
		return u, err
	}

	cleaned := []string{song.Artist, matching.StripQualifiers(song.Title), matching.StripQualifiers(album)}
	if equalTerms(terms, cleaned) {
		return "", nil
	}
	zlog.Debug().Msgf("song not found on apple, retrying with cleaned terms: %v", cleaned)
	return p.lookup(ctx, cleaned)
}

func (p *AppleProvider) lookup(ctx context.Context, terms []string) (string, error) {
	u, err := p.apple.TrackURL(ctx, terms...)
	if errors.Is(err, itunes.ErrNotFound) {
		return "", nil
	}
	return u, err
}

func equalTerms(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
