// Package track provides the track domain entities.
package track

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Identity identifies a song by title and artist.
type Identity struct {
	Title  string
	Artist string
}

// NowPlaying represents a snapshot of what a user is currently playing.
// Contains only information retrieved from the streaming service.
type NowPlaying struct {
	Title      string // Track name
	Artist     string // Main artist name
	Album      string // Album name
	ProgressMs int    // Playback position
	IsPlaying  bool   // Playback is running (not paused)
	HasItem    bool   // False for podcasts and ads
	SpotifyURL string // Spotify URL (empty if unknown)
}

// Identity returns the identity of the playing track.
func (n *NowPlaying) Identity() Identity {
	return Identity{Title: n.Title, Artist: n.Artist}
}

// Playable reports whether the snapshot describes a playing track.
func (n *NowPlaying) Playable() bool {
	return n != nil && n.IsPlaying && n.HasItem
}

// Record returns the play record for this poll.
func (n *NowPlaying) Record() PlayRecord {
	return PlayRecord{Title: n.Title, Artist: n.Artist, ProgressMs: n.ProgressMs}
}

// PlayRecord is one observed "currently playing" poll.
type PlayRecord struct {
	Title      string
	Artist     string
	ProgressMs int
}

// Identity returns the identity of the recorded track.
func (r PlayRecord) Identity() Identity {
	return Identity{Title: r.Title, Artist: r.Artist}
}

// MarshalJSON encodes the record as [title, artist, progress_ms].
func (r PlayRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Title, r.Artist, r.ProgressMs})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (r *PlayRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "play record must be an array")
	}
	if len(raw) != 3 {
		return errors.Newf("play record must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Title); err != nil {
		return errors.Wrap(err, "invalid title")
	}
	if err := json.Unmarshal(raw[1], &r.Artist); err != nil {
		return errors.Wrap(err, "invalid artist")
	}
	var progress float64
	if err := json.Unmarshal(raw[2], &progress); err != nil {
		return errors.Wrap(err, "invalid progress")
	}
	r.ProgressMs = int(progress)
	return nil
}

// History is the ordered list of recent polls for one user, oldest first.
type History []PlayRecord

// Last returns the most recently observed poll.
func (h History) Last() (PlayRecord, bool) {
	if len(h) == 0 {
		return PlayRecord{}, false
	}
	return h[len(h)-1], true
}
