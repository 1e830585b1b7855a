package links

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/app/matching"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/lastfm"
)

type LastFmProviderConfig struct {
	// LyricsPage points the link at the track's lyrics tab.
	LyricsPage *bool `yaml:"lyrics_page" mapstructure:"lyrics_page" default:"true"`
}

// LastFmProvider links to the Last.fm track page.
// When the exact title is unknown it retries once with the title stripped of qualifiers.
type LastFmProvider struct {
	lastfm LastFmClient
	config *LastFmProviderConfig
}

// NewLastFmProvider creates a new LastFmProvider.
func NewLastFmProvider(client LastFmClient, settings map[string]any) (*LastFmProvider, error) {
	if client == nil {
		return nil, errors.New("last.fm client is required")
	}

	var config LastFmProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &LastFmProvider{lastfm: client, config: &config}, nil
}

func (p *LastFmProvider) Name() string {
	return "lastfm"
}

func (p *LastFmProvider) Link(ctx context.Context, song track.NowPlaying) (string, error) {
	u, err := p.lookup(ctx, song.Title, song.Artist)
	if err != nil {
		return "", err
	}
	if u == "" {
		cleaned := matching.StripQualifiers(song.Title)
		if cleaned == song.Title || cleaned == "" {
			return "", nil
		}
		zlog.Debug().Msgf("song not found on last.fm, retrying without qualifiers: %s", cleaned)
		if u, err = p.lookup(ctx, cleaned, song.Artist); err != nil || u == "" {
			return "", err
		}
	}

	if p.config.LyricsPage == nil || *p.config.LyricsPage {
		u += "/+lyrics"
	}
	return u, nil
}

func (p *LastFmProvider) lookup(ctx context.Context, title, artist string) (string, error) {
	u, err := p.lastfm.TrackURL(ctx, title, artist)
	if errors.Is(err, lastfm.ErrNotFound) {
		return "", nil
	}
	return u, err
}
