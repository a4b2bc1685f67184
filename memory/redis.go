package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShamanBV/shaman-assistant/config"
)

const redisKeyPrefix = "assistant:thread:"

// RedisStore persists thread rounds in Redis so multiple assistant
// instances share conversation context. Thread expiry rides on the key TTL,
// refreshed on every save.
type RedisStore struct {
	client    *redis.Client
	maxRounds int
	ttl       time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg config.RedisConfig, maxRounds int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis failed, err: %w", err)
	}
	return &RedisStore{client: client, maxRounds: maxRounds, ttl: ttl}, nil
}

func (s *RedisStore) LastRounds(ctx context.Context, threadID string, n int) ([]Round, error) {
	rounds, err := s.load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(rounds) {
		rounds = rounds[len(rounds)-n:]
	}
	return rounds, nil
}

func (s *RedisStore) SaveRound(ctx context.Context, threadID string, round Round) error {
	if round.Timestamp.IsZero() {
		round.Timestamp = time.Now()
	}
	rounds, err := s.load(ctx, threadID)
	if err != nil {
		return err
	}
	rounds = append(rounds, round)
	if len(rounds) > s.maxRounds {
		rounds = rounds[len(rounds)-s.maxRounds:]
	}
	data, err := json.Marshal(rounds)
	if err != nil {
		return fmt.Errorf("marshal thread rounds failed, err: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+threadID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save thread rounds failed, err: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+threadID).Err(); err != nil {
		return fmt.Errorf("clear thread failed, err: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) load(ctx context.Context, threadID string) ([]Round, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+threadID).Bytes()
	if err == redis.Nil {
		return []Round{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load thread rounds failed, err: %w", err)
	}
	var rounds []Round
	if err := json.Unmarshal(data, &rounds); err != nil {
		return nil, fmt.Errorf("unmarshal thread rounds failed, err: %w", err)
	}
	return rounds, nil
}
