package links

import (
	"context"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// SpotifyProvider links to the track reported by the player.
type SpotifyProvider struct{}

func (p *SpotifyProvider) Name() string {
	return "spotify"
}

func (p *SpotifyProvider) Link(_ context.Context, song track.NowPlaying) (string, error) {
	return song.SpotifyURL, nil
}
