package store

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	redisClient "github.com/go-redis/redis/v8"

	"github.com/osa030/lyricpost/internal/domain/track"
)

const redisKeyPrefix = "lyricpost:history:"

// RedisStore keeps one JSON value per user.
type RedisStore struct {
	client *redisClient.Client
}

// NewRedisStore connects to the server at url (redis:// or rediss://).
func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	return &RedisStore{client: redisClient.NewClient(opt)}, nil
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, user string) (track.History, error) {
	data, err := s.client.Get(ctx, redisKey(user)).Bytes()
	if err != nil {
		if err == redisClient.Nil {
			return track.History{}, nil
		}
		return nil, errors.Wrapf(err, "failed to load history of %s", user)
	}

	var h track.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrapf(err, "failed to decode history of %s", user)
	}
	return h, nil
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, user string, h track.History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}
	if err := s.client.Set(ctx, redisKey(user), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save history of %s", user)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(user string) string {
	return redisKeyPrefix + user
}
