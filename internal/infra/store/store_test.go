package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/lyricpost/internal/domain/track"
	"github.com/osa030/lyricpost/internal/infra/config"
)

var sampleHistory = track.History{
	{Title: "Believe", Artist: "Cher", ProgressMs: 1200},
	{Title: "Yesterday", Artist: "The Beatles", ProgressMs: 64000},
}

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "previous_songs.json")),
		"sqlite": sqlite,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			h, err := s.Load(ctx, "alice")
			require.NoError(t, err)
			assert.Empty(t, h)

			require.NoError(t, s.Save(ctx, "alice", sampleHistory))
			require.NoError(t, s.Save(ctx, "bob", sampleHistory[:1]))

			h, err = s.Load(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, sampleHistory, h)

			h, err = s.Load(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, sampleHistory[:1], h)

			// Overwrite with a shorter history.
			require.NoError(t, s.Save(ctx, "alice", sampleHistory[1:]))
			h, err = s.Load(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, sampleHistory[1:], h)
		})
	}
}

func TestFileStore_LegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_songs.json")
	legacy := `{"alice": [["Believe", "Cher", 1200], ["Yesterday", "The Beatles", 64000.0]]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := NewFileStore(path)
	h, err := s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, sampleHistory, h)

	require.NoError(t, s.Save(context.Background(), "bob", sampleHistory[:1]))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"alice": [["Believe","Cher",1200],["Yesterday","The Beatles",64000]], "bob": [["Believe","Cher",1200]]}`,
		string(data))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_songs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)
	h, err := s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, s.Save(context.Background(), "alice", sampleHistory))
	h, err = s.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, sampleHistory, h)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "previous_songs.json")

	require.NoError(t, NewFileStore(path).Save(context.Background(), "alice", sampleHistory))
	assert.FileExists(t, path)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.HistoryConfig{Backend: "file", Path: filepath.Join(dir, "h.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.HistoryConfig{Backend: "sqlite", Path: filepath.Join(dir, "h.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(config.HistoryConfig{Backend: "redis", RedisURL: "redis://localhost:6379/0"})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.HistoryConfig{Backend: "redis", RedisURL: "::bad"})
	assert.Error(t, err)

	_, err = Open(config.HistoryConfig{Backend: "etcd"})
	assert.Error(t, err)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "lyricpost:history:alice", redisKey("alice"))
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_LoadSave(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	h, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, h, "missing key yields empty history")

	require.NoError(t, s.Save(ctx, "alice", sampleHistory))

	got, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, sampleHistory, got)

	raw, err := mr.Get("lyricpost:history:alice")
	require.NoError(t, err)
	assert.JSONEq(t, `[["Believe","Cher",1200],["Yesterday","The Beatles",64000]]`, raw)

	other, err := s.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	s, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("lyricpost:history:alice", "{not json"))

	_, err := s.Load(context.Background(), "alice")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode history of alice")
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, err := s.Load(context.Background(), "alice")
	assert.Error(t, err)
}
