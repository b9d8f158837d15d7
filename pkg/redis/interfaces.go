package redis

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a key has no value. Reads for a dataset
// no agent has written yet return it wrapped; callers distinguish a
// clean miss from a broken connection with errors.Is.
var ErrNotFound = errors.New("not found")

// Client covers the operations the canopy keyspace needs: plain
// strings for clock state and the resolution report, a hash for
// dataset metadata and a sorted set for the control timeline. Key
// names come from the builders in keys.go.
type Client interface {
	// Set stores a string value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get returns the value of a key, or ErrNotFound wrapped.
	Get(ctx context.Context, key string) (string, error)

	// HSet sets one field in a hash.
	HSet(ctx context.Context, key string, field string, value interface{}) error

	// HGetAll returns every field of a hash; a missing key yields an
	// empty map, not an error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// ZAdd adds a member with a score to a sorted set.
	ZAdd(ctx context.Context, key string, score float64, member interface{}) error

	// ZRemRangeByScore removes members with scores between min and
	// max, both inclusive.
	ZRemRangeByScore(ctx context.Context, key string, min, max string) error

	// ZCard returns the number of members in a sorted set.
	ZCard(ctx context.Context, key string) (int64, error)

	// Expire sets a TTL on a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close closes the connection.
	Close() error
}
