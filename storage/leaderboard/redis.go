// Package leaderboardcache implements the live leaderboard cache on Redis.
// Ranks live in a sorted set, denormalized entries in plain keys, and updates
// fan out over pub/sub.
package leaderboardcache

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/leaderboard"
)

const (
	scoresKey      = "leaderboard:scores"
	entryKeyPrefix = "leaderboard:entry:"
	updatesChannel = "leaderboard:updates"
)

type Cache struct {
	client *redis.Client
}

var _ leaderboard.Cache = (*Cache)(nil)

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func NewClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

func (c *Cache) Add(ctx context.Context, e leaderboard.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshaling leaderboard entry")
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(e.Score), Member: e.ID})
	pipe.Set(ctx, entryKeyPrefix+e.ID, data, 0)
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "caching leaderboard entry")
}

func (c *Cache) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	ids, err := c.client.ZRevRange(ctx, scoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading leaderboard ranking")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKeyPrefix + id
	}
	raws, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "reading leaderboard entries")
	}

	entries := make([]leaderboard.Entry, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue // entry evicted; ranking alone is not enough
		}
		var e leaderboard.Entry
		if err = json.Unmarshal([]byte(s), &e); err != nil {
			return nil, errors.Wrap(err, "decoding cached leaderboard entry")
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Cache) Publish(ctx context.Context, e leaderboard.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshaling leaderboard entry")
	}
	return errors.Wrap(c.client.Publish(ctx, updatesChannel, data).Err(), "publishing leaderboard update")
}

// Subscribe streams leaderboard updates until ctx is canceled. Messages that
// fail to decode are dropped.
func (c *Cache) Subscribe(ctx context.Context) (<-chan leaderboard.Entry, error) {
	sub := c.client.Subscribe(ctx, updatesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, errors.Wrap(err, "subscribing to leaderboard updates")
	}

	out := make(chan leaderboard.Entry)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e leaderboard.Entry
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
