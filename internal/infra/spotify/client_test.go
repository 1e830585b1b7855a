package spotify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Localized URL with query params",
			input:    "https://open.spotify.com/intl-ja/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Plain track ID",
			input:    "4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTrackID(tt.input))
		})
	}
}

func decodePlayback(t *testing.T, payload string) *spotify.CurrentlyPlaying {
	t.Helper()
	var cp spotify.CurrentlyPlaying
	require.NoError(t, json.Unmarshal([]byte(payload), &cp))
	return &cp
}

func TestConvertCurrentlyPlaying_Track(t *testing.T) {
	cp := decodePlayback(t, `{
		"timestamp": 1700000000000,
		"progress_ms": 43210,
		"is_playing": true,
		"item": {
			"id": "3n3Ppam7vgaVa1iaRUc9Lp",
			"name": "Mr. Brightside",
			"artists": [{"name": "The Killers"}, {"name": "Someone Else"}],
			"album": {"name": "Hot Fuss"},
			"external_urls": {"spotify": "https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp"}
		}
	}`)

	np := convertCurrentlyPlaying(cp)

	require.NotNil(t, np)
	assert.True(t, np.Playable())
	assert.Equal(t, "Mr. Brightside", np.Title)
	assert.Equal(t, "The Killers", np.Artist)
	assert.Equal(t, "Hot Fuss", np.Album)
	assert.Equal(t, 43210, np.ProgressMs)
	assert.Equal(t, "https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp", np.SpotifyURL)
}

func TestConvertCurrentlyPlaying_Podcast(t *testing.T) {
	cp := decodePlayback(t, `{"progress_ms": 1000, "is_playing": true, "item": null}`)

	np := convertCurrentlyPlaying(cp)

	require.NotNil(t, np)
	assert.False(t, np.HasItem)
	assert.False(t, np.Playable())
}

func TestConvertCurrentlyPlaying_Nil(t *testing.T) {
	assert.Nil(t, convertCurrentlyPlaying(nil))
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id", ClientSecret: "secret"})
	assert.Error(t, err)
}

func TestTrackURL(t *testing.T) {
	assert.Equal(t, "https://open.spotify.com/track/abc", TrackURL("spotify:track:abc"))
}
