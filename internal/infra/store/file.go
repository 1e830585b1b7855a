package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// FileStore keeps every user's history in one JSON object keyed by user name:
//
//	{"alice": [["Title", "Artist", 12345], ...]}
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the history of user. A missing or unreadable file is treated as empty.
func (s *FileStore) Load(_ context.Context, user string) (track.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.readAll()
	return all[user], nil
}

// Save replaces the history of user, keeping the other users' entries.
func (s *FileStore) Save(_ context.Context, user string, h track.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.readAll()
	all[user] = h

	data, err := json.Marshal(all)
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", s.path)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readAll() map[string]track.History {
	all := make(map[string]track.History)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zlog.Warn().Err(err).Msgf("failed to read history file %s", s.path)
		}
		return all
	}

	if err := json.Unmarshal(data, &all); err != nil {
		zlog.Warn().Err(err).Msgf("history file %s is corrupt, starting empty", s.path)
		return make(map[string]track.History)
	}
	return all
}
