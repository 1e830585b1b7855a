// Package publish defines where excerpts are posted.
package publish

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Sink publishes a post and threads replies under it.
type Sink interface {
	// Post publishes text and returns the post ID.
	Post(ctx context.Context, text string) (string, error)
	// Reply publishes text as a reply to the post parentID.
	Reply(ctx context.Context, parentID, text string) (string, error)
}

// LogSink only logs what would have been posted.
type LogSink struct {
	logger zerolog.Logger

	mu     sync.Mutex
	nextID int
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Post(_ context.Context, text string) (string, error) {
	id := s.id()
	s.logger.Info().Str("post_id", id).Msgf("dry run post:\n%s", text)
	return id, nil
}

func (s *LogSink) Reply(_ context.Context, parentID, text string) (string, error) {
	id := s.id()
	s.logger.Info().Str("post_id", id).Str("parent_id", parentID).Msgf("dry run reply:%s", text)
	return id, nil
}

func (s *LogSink) id() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return "dry-run-" + strconv.Itoa(s.nextID)
}
