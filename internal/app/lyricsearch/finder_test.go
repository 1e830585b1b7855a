package lyricsearch

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/lyricpost/internal/app/matching"
	"github.com/osa030/lyricpost/internal/domain/lyrics"
	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/genius"
	"github.com/osa030/lyricpost/internal/infra/retry"
)

type fakeSource struct {
	songs map[string]*lyrics.Song // title -> song
	err   error
	calls []string
}

func (f *fakeSource) Search(_ context.Context, title, artist string) (*lyrics.Song, error) {
	f.calls = append(f.calls, title)
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.songs[title]; ok {
		return s, nil
	}
	return nil, genius.ErrNotFound
}

func newFinder(src Source) *Finder {
	return NewFinder(src, matching.NewMatcher(matching.DefaultConfig(), zerolog.Nop()), zerolog.Nop())
}

var believe = &lyrics.Song{
	Title:  "Believe",
	Artist: "Cher",
	URL:    "https://genius.com/Cher-believe-lyrics",
	Lyrics: "[Verse 1]\nNo matter how hard I try",
}

func TestFinder_DirectHit(t *testing.T) {
	src := &fakeSource{songs: map[string]*lyrics.Song{"Believe": believe}}

	song, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe", Artist: "Cher"})
	require.NoError(t, err)
	assert.Same(t, believe, song)
	assert.Equal(t, []string{"Believe"}, src.calls)
}

func TestFinder_RetriesWithStrippedTitle(t *testing.T) {
	src := &fakeSource{songs: map[string]*lyrics.Song{
		// The decorated title finds an unrelated song.
		"Believe - 2018 Remaster": {Title: "Remaster Notes", Artist: "Someone Else"},
		"Believe":                 believe,
	}}

	song, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe - 2018 Remaster", Artist: "Cher"})
	require.NoError(t, err)
	assert.Same(t, believe, song)
	assert.Equal(t, []string{"Believe - 2018 Remaster", "Believe"}, src.calls)
}

func TestFinder_NotFound(t *testing.T) {
	t.Run("no qualifiers to strip", func(t *testing.T) {
		src := &fakeSource{}
		_, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe", Artist: "Cher"})
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Len(t, src.calls, 1)
	})

	t.Run("both attempts miss", func(t *testing.T) {
		src := &fakeSource{}
		_, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe (Live)", Artist: "Cher"})
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, []string{"Believe (Live)", "Believe"}, src.calls)
	})

	t.Run("wrong artist", func(t *testing.T) {
		src := &fakeSource{songs: map[string]*lyrics.Song{"Believe": {Title: "Believe", Artist: "The Bravery"}}}
		_, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe", Artist: "Cher"})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestFinder_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("genius API error 500")}

	_, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe", Artist: "Cher"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFinder_RetriesExhausted(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 2, Retryable: retry.IsTransient}
	src := &fakeSource{err: errors.Wrap(
		policy.Do(context.Background(), func() error { return errors.New("dial tcp: connection refused") }),
		"failed to search genius",
	)}

	song, err := newFinder(src).Find(context.Background(), track.Identity{Title: "Believe (Live)", Artist: "Cher"})
	assert.Nil(t, song)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Len(t, src.calls, 1, "no second search once the database is unreachable")
}
