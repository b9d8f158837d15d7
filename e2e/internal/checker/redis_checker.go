package checker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

// CheckRedis validates a stored-state expectation. With a field set
// it reads a hash, like the canopy:meta:{dataset} entry; without one
// it reads the whole key, which is how canopy:state:{dataset} stores
// the clock snapshot as JSON. Regex expectations make the JSON form
// usable without exact-matching the full document.
func CheckRedis(ctx context.Context, client *redis.Client, exp scenario.Expectation) (bool, string, interface{}) {
	var value string
	var err error

	if exp.RedisField != "" {
		value, err = client.HGet(ctx, exp.RedisKey, exp.RedisField).Result()
	} else {
		value, err = client.Get(ctx, exp.RedisKey).Result()
	}

	if err == redis.Nil {
		if exp.RedisField != "" {
			return false, fmt.Sprintf("key %q field %q not found in Redis", exp.RedisKey, exp.RedisField), nil
		}
		return false, fmt.Sprintf("key %q not found in Redis", exp.RedisKey), nil
	}
	if err != nil {
		return false, fmt.Sprintf("Redis error: %v", err), nil
	}

	matches, reason := MatchValue(value, exp.Expected)
	if !matches {
		return false, reason, value
	}

	return true, "", value
}
