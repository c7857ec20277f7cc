package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/offerhound/internal/model"
)

const defaultKeyPrefix = "offerhound"

// RedisStore keeps offers in a hash keyed by URL and orders them in a sorted
// set scored by first-seen time. Both writes are NX, so replays are harmless.
type RedisStore struct {
	client  *redis.Client
	records string
	order   string
	seen    seenSet
	now     func() time.Time
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL, keyPrefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return newRedisStore(client, keyPrefix), nil
}

func newRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	keyPrefix = strings.TrimSuffix(keyPrefix, ":")
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{
		client:  client,
		records: keyPrefix + ":offers",
		order:   keyPrefix + ":first_seen",
		seen:    newSeenSet(),
		now:     time.Now,
	}
}

func (s *RedisStore) Load(ctx context.Context) error {
	urls, err := s.client.HKeys(ctx, s.records).Result()
	if err != nil {
		return fmt.Errorf("loading offer urls: %w", err)
	}
	for _, u := range urls {
		s.seen.MarkIfNew(u)
	}
	return nil
}

func (s *RedisStore) FilterNew(offers []model.Offer) []model.Offer {
	return s.seen.FilterNew(offers)
}

// Persist writes every offer inside one MULTI/EXEC.
func (s *RedisStore) Persist(ctx context.Context, offers []model.Offer) error {
	offers = stamp(offers, s.now().UTC())
	if len(offers) == 0 {
		return nil
	}

	payloads := make([][]byte, len(offers))
	for i, o := range offers {
		b, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", o.JobURL, err)
		}
		payloads[i] = b
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, o := range offers {
			pipe.HSetNX(ctx, s.records, o.JobURL, payloads[i])
			pipe.ZAddNX(ctx, s.order, redis.Z{Score: float64(o.FirstSeen.Unix()), Member: o.JobURL})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persisting offers: %w", err)
	}

	for _, o := range offers {
		s.seen.MarkIfNew(o.JobURL)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, n int) ([]model.Offer, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}
	urls, err := s.client.ZRevRange(ctx, s.order, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing recent offers: %w", err)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	values, err := s.client.HMGet(ctx, s.records, urls...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching offers: %w", err)
	}
	out := make([]model.Offer, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var o model.Offer
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", urls[i], err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *RedisStore) Len() int { return s.seen.Len() }

func (s *RedisStore) Close() error {
	return s.client.Close()
}
