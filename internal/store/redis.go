package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/i474232898/statewise/internal/snapshot"
)

var _ snapshot.Store = (*RedisStore)(nil)

// RedisStore keeps each snapshot as a JSON document under "<prefix>:snapshot:<id>",
// with sorted-set indexes (score = id) for listing.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}
	return NewRedisStore(client, "statewise"), nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Create(ctx context.Context, snap snapshot.Snapshot) (snapshot.Snapshot, error) {
	id, err := s.client.Incr(ctx, s.prefix+":seq").Result()
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to allocate snapshot id: %w", err)
	}

	snap.ID = id
	snap.CreatedAt = s.now()
	if snap.Activities == nil {
		snap.Activities = []snapshot.Activity{}
	}

	doc, err := json.Marshal(snap)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	member := &redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(id), doc, 0)
		pipe.ZAdd(ctx, s.allKey(), member)
		pipe.ZAdd(ctx, s.stateIndexKey(snap.State), member)
		return nil
	})
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (snapshot.Snapshot, error) {
	doc, err := s.client.Get(ctx, s.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	} else if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("unexpected error during redis fetch(%d): %w", id, err)
	}
	return decodeSnapshot(doc)
}

func (s *RedisStore) ListByState(ctx context.Context, state string, limit int) ([]snapshot.Snapshot, error) {
	index := s.allKey()
	if state != "" {
		index = s.stateIndexKey(state)
	}
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := s.client.ZRevRange(ctx, index, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	result := make([]snapshot.Snapshot, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":snapshot:" + id
	}
	docs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	for _, d := range docs {
		str, ok := d.(string)
		if !ok {
			continue
		}
		snap, err := decodeSnapshot([]byte(str))
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}
	return result, nil
}

func decodeSnapshot(doc []byte) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Activities == nil {
		snap.Activities = []snapshot.Activity{}
	}
	return snap, nil
}

func (s *RedisStore) docKey(id int64) string {
	return s.prefix + ":snapshot:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) allKey() string {
	return s.prefix + ":snapshots"
}

func (s *RedisStore) stateIndexKey(state string) string {
	return s.prefix + ":snapshots:state:" + stateKey(state)
}
