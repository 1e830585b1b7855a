package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/lyricpost/internal/domain/track"
)

func rec(title, artist string, progress int) track.PlayRecord {
	return track.PlayRecord{Title: title, Artist: artist, ProgressMs: progress}
}

func TestClassify(t *testing.T) {
	h := track.History{
		rec("X", "Y", 1000),
		rec("A", "B", 50000),
	}

	tests := []struct {
		name     string
		history  track.History
		current  track.PlayRecord
		expected Classification
	}{
		{
			name:     "progress went back",
			history:  h,
			current:  rec("A", "B", 10000),
			expected: Replayed,
		},
		{
			name:     "equal progress counts as replay",
			history:  h,
			current:  rec("A", "B", 50000),
			expected: Replayed,
		},
		{
			name:     "progress advanced",
			history:  h,
			current:  rec("A", "B", 90000),
			expected: SamePlay,
		},
		{
			name:     "different title",
			history:  h,
			current:  rec("C", "B", 90000),
			expected: NewPlay,
		},
		{
			name:     "different artist",
			history:  h,
			current:  rec("A", "Z", 90000),
			expected: NewPlay,
		},
		{
			name:     "only the last entry is compared",
			history:  h,
			current:  rec("X", "Y", 5000),
			expected: NewPlay,
		},
		{
			name:     "empty history",
			history:  nil,
			current:  rec("A", "B", 0),
			expected: NewPlay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.history, tt.current)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected != NewPlay, got.Continued())
		})
	}
}

func TestTracker_RecordSamePlayReplacesLast(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	h := track.History{rec("X", "Y", 1), rec("A", "B", 50000)}

	cur := rec("A", "B", 90000)
	out := tr.Record(h, cur, Classify(h, cur))

	assert.Equal(t, track.History{rec("X", "Y", 1), rec("A", "B", 90000)}, out)
	assert.Equal(t, rec("A", "B", 50000), h[1], "input must not be mutated")
}

func TestTracker_RecordAppends(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	h := track.History{rec("A", "B", 50000)}

	replay := rec("A", "B", 100)
	out := tr.Record(h, replay, Classify(h, replay))
	assert.Equal(t, track.History{rec("A", "B", 50000), rec("A", "B", 100)}, out)

	next := rec("C", "D", 0)
	out = tr.Record(out, next, Classify(out, next))
	assert.Len(t, out, 3)
}

func TestTracker_RecordEvictsOldest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntries = 3
	tr := NewTracker(cfg)

	var h track.History
	for _, title := range []string{"1", "2", "3", "4", "5"} {
		cur := rec(title, "artist", 0)
		h = tr.Record(h, cur, Classify(h, cur))
		assert.LessOrEqual(t, len(h), cfg.MaxEntries)
	}

	assert.Equal(t, track.History{rec("3", "artist", 0), rec("4", "artist", 0), rec("5", "artist", 0)}, h)
}

func TestReplayCount(t *testing.T) {
	id := track.Identity{Title: "A", Artist: "B"}
	h := track.History{
		rec("A", "B", 100),
		rec("C", "D", 100),
		rec("A", "B", 200),
		rec("A", "B", 10),
	}

	// The last entry is the current poll and is not a replay of itself.
	assert.Equal(t, 2, ReplayCount(h, id))
	assert.Equal(t, 1, ReplayCount(h, track.Identity{Title: "C", Artist: "D"}))
	assert.Equal(t, 0, ReplayCount(nil, id))
}

func TestTracker_Odds(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tests := []struct {
		replays  int
		expected int
	}{
		{replays: 0, expected: 120},
		{replays: 1, expected: 80},
		{replays: 2, expected: 40},
		{replays: 3, expected: 26},
		{replays: 100, expected: 1},
		{replays: 1000, expected: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tr.Odds(tt.replays), "replays=%d", tt.replays)
	}
}

type fixedSource int

func (f fixedSource) Intn(n int) int {
	return int(f) % n
}

func TestTracker_Roll(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	assert.True(t, tr.Roll(fixedSource(0), 120))
	assert.False(t, tr.Roll(fixedSource(7), 120))
	assert.True(t, tr.Roll(fixedSource(7), 1), "odds of 1 always win")
}

func TestTracker_ResetAfterPost(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	h := track.History{
		rec("A", "B", 100),
		rec("C", "D", 100),
		rec("A", "B", 200),
		rec("A", "B", 300),
	}

	cur := rec("A", "B", 300)
	out := tr.ResetAfterPost(h, cur)

	assert.Equal(t, track.History{rec("C", "D", 100), rec("A", "B", 300)}, out)
	assert.Equal(t, 0, ReplayCount(out, cur.Identity()))
	assert.Equal(t, 120, tr.Odds(ReplayCount(out, cur.Identity())))
}

func TestClassification_String(t *testing.T) {
	assert.Equal(t, "new_play", NewPlay.String())
	assert.Equal(t, "replayed", Replayed.String())
	assert.Equal(t, "same_play", SamePlay.String())
}
