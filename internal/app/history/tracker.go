// Package history classifies polls against a user's play history and
// derives the posting odds from recent replays.
package history

import (
	"github.com/osa030/lyricpost/internal/domain/track"
)

// Classification describes how the current poll relates to the previous one.
type Classification int

const (
	// NewPlay is a different track than the previous poll (or no previous poll).
	NewPlay Classification = iota
	// Replayed is the same track restarted: progress did not advance.
	Replayed
	// SamePlay is the same track still playing: progress advanced.
	SamePlay
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case NewPlay:
		return "new_play"
	case Replayed:
		return "replayed"
	case SamePlay:
		return "same_play"
	default:
		return "unknown"
	}
}

// Continued reports whether the poll shows the same track as the previous poll.
func (c Classification) Continued() bool {
	return c == Replayed || c == SamePlay
}

// Config holds the tracker settings.
type Config struct {
	MaxEntries         int     // History length per user
	BaseChance         int     // 1-in-N chance to post for a song without recent replays
	ReplayReduceFactor float64 // Divisor applied per recent replay
}

// DefaultConfig returns the default tracker settings.
func DefaultConfig() Config {
	return Config{
		MaxEntries:         300,
		BaseChance:         120,
		ReplayReduceFactor: 1.5,
	}
}

// Source is the random source used for the posting roll.
type Source interface {
	Intn(n int) int
}

// Tracker applies the history update policy.
type Tracker struct {
	config Config
}

// NewTracker creates a new tracker.
func NewTracker(config Config) *Tracker {
	return &Tracker{config: config}
}

// Classify compares cur with the last entry of h on title and artist.
// Equal progress counts as a replay.
func Classify(h track.History, cur track.PlayRecord) Classification {
	last, ok := h.Last()
	if !ok || last.Identity() != cur.Identity() {
		return NewPlay
	}
	if last.ProgressMs >= cur.ProgressMs {
		return Replayed
	}
	return SamePlay
}

// Record returns h updated with cur. A SamePlay poll replaces the last entry;
// anything else is appended, evicting the oldest entries beyond MaxEntries.
func (t *Tracker) Record(h track.History, cur track.PlayRecord, cls Classification) track.History {
	out := make(track.History, 0, len(h)+1)
	out = append(out, h...)
	if cls == SamePlay && len(out) > 0 {
		out[len(out)-1] = cur
		return out
	}
	out = append(out, cur)
	return t.trim(out)
}

// ReplayCount counts the entries of h that share id, not counting the last
// entry when it is the just-recorded poll of id.
func ReplayCount(h track.History, id track.Identity) int {
	if last, ok := h.Last(); ok && last.Identity() == id {
		h = h[:len(h)-1]
	}
	count := 0
	for _, r := range h {
		if r.Identity() == id {
			count++
		}
	}
	return count
}

// Odds returns N for the 1-in-N posting chance after replays recent plays.
// The result is never below 1.
func (t *Tracker) Odds(replays int) int {
	reduce := float64(replays) * t.config.ReplayReduceFactor
	if reduce < 1 {
		reduce = 1
	}
	odds := int(float64(t.config.BaseChance) / reduce)
	if odds < 1 {
		odds = 1
	}
	return odds
}

// Roll draws against 1-in-odds and reports a win.
func (t *Tracker) Roll(rng Source, odds int) bool {
	if odds <= 1 {
		return true
	}
	return rng.Intn(odds) == 0
}

// ResetAfterPost drops every entry of cur's track and appends cur once,
// so the track is posted at full odds again in the future.
func (t *Tracker) ResetAfterPost(h track.History, cur track.PlayRecord) track.History {
	id := cur.Identity()
	out := make(track.History, 0, len(h)+1)
	for _, r := range h {
		if r.Identity() != id {
			out = append(out, r)
		}
	}
	out = append(out, cur)
	return t.trim(out)
}

func (t *Tracker) trim(h track.History) track.History {
	if t.config.MaxEntries > 0 && len(h) > t.config.MaxEntries {
		return h[len(h)-t.config.MaxEntries:]
	}
	return h
}
