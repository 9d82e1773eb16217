package infrastructure

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns a cluster client when cluster mode is on and more
// than one address is given, a single-node client otherwise.
func NewRedisClient(ctx context.Context, addrs []string, password string, cluster bool) (redis.UniversalClient, error) {
	if len(addrs) == 0 {
		return nil, errors.New("no redis address configured")
	}

	var rdb redis.UniversalClient
	if cluster && len(addrs) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       0,
		})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
