// Package links finds cross-reference links for a posted song.
package links

import (
	"context"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// Provider is the interface for link providers.
// Different implementations look the song up on different services.
type Provider interface {
	// Link returns the URL of the song on the provider's service.
	// An empty URL with a nil error means the song was not found.
	Link(ctx context.Context, song track.NowPlaying) (string, error)

	// Name returns the provider type (used in config).
	Name() string
}

// LastFmClient defines the Last.fm operations needed by the lastfm provider.
type LastFmClient interface {
	TrackURL(ctx context.Context, title, artist string) (string, error)
}

// AppleClient defines the iTunes Search operations needed by the apple provider.
type AppleClient interface {
	TrackURL(ctx context.Context, terms ...string) (string, error)
}
