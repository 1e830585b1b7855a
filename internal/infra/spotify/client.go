// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/retry"
)

// Scopes are the OAuth scopes needed to read the current playback.
var Scopes = []string{
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopeUserReadPlaybackState,
}

// Client is a Spotify API client bound to one user.
type Client struct {
	client *spotify.Client
	retry  retry.Policy
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Retry        retry.Policy
}

// New creates a new Spotify client for the user owning RefreshToken.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(Scopes...),
	)

	// Create token from refresh token
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	// Get HTTP client with auto-refresh capability
	httpClient := auth.Client(ctx, token)

	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second)}
	}
	policy.Retryable = retry.IsTransient

	return &Client{
		client: spotify.New(httpClient),
		retry:  policy,
	}, nil
}

// CurrentlyPlaying returns what the user is playing, or nil when nothing is.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*track.NowPlaying, error) {
	var result *spotify.CurrentlyPlaying
	err := c.retry.Do(ctx, func() error {
		cp, err := c.client.PlayerCurrentlyPlaying(ctx)
		if err != nil {
			return err
		}
		result = cp
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get currently playing track")
	}

	return convertCurrentlyPlaying(result), nil
}

// convertCurrentlyPlaying converts a Spotify playback snapshot to the domain type.
func convertCurrentlyPlaying(cp *spotify.CurrentlyPlaying) *track.NowPlaying {
	if cp == nil {
		return nil
	}

	np := &track.NowPlaying{
		ProgressMs: int(cp.Progress),
		IsPlaying:  cp.Playing,
	}

	// Item is nil for podcasts and ads
	t := cp.Item
	if t == nil || t.Name == "" {
		return np
	}
	np.HasItem = true
	np.Title = t.Name
	if len(t.Artists) > 0 {
		np.Artist = t.Artists[0].Name
	}
	np.Album = t.Album.Name

	if u, ok := t.ExternalURLs["spotify"]; ok {
		np.SpotifyURL = u
	} else if t.ID != "" {
		np.SpotifyURL = TrackURL(string(t.ID))
	}

	return np
}

// TrackURL returns the Spotify URL for a track.
func TrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", extractTrackID(trackID))
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:track:TRACK_ID
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	// Handle URL format: https://open.spotify.com/track/TRACK_ID or https://open.spotify.com/intl-XX/track/TRACK_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			// Remove query parameters and trailing slashes
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	// Assume it's already a track ID
	return input
}
