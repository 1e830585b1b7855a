// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotFound is returned when Last.fm does not know the track.
var ErrNotFound = errors.New("track not found on last.fm")

// errTrackNotFound is the Last.fm API error code for an unknown track.
const errTrackNotFound = 6

// trackAPI is the subset of the Last.fm track API used by Client.
type trackAPI interface {
	GetInfo(args map[string]interface{}) (lastfm.TrackGetInfo, error)
}

// Client is a Last.fm API client.
type Client struct {
	tracks trackAPI
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey    string
	APISecret string
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}

	api := lastfm.New(cfg.APIKey, cfg.APISecret)
	return &Client{tracks: api.Track}, nil
}

// TrackURL returns the Last.fm page of a track.
// Reference: https://www.last.fm/api/show/track.getInfo
func (c *Client) TrackURL(ctx context.Context, title, artist string) (string, error) {
	if title == "" || artist == "" {
		return "", errors.New("track name and artist name are required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := c.tracks.GetInfo(lastfm.P{
		"artist":      artist,
		"track":       title,
		"autocorrect": 1,
	})
	if err != nil {
		var apiErr *lastfm.LastfmError
		if errors.As(err, &apiErr) && apiErr.Code == errTrackNotFound {
			zlog.Debug().Msgf("track not found on last.fm: %s - %s", artist, title)
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "last.fm track.getInfo failed")
	}
	if info.Url == "" {
		return "", ErrNotFound
	}

	return info.Url, nil
}
