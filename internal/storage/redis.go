package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yourname/bloomhealth/internal"
)

// RedisStore writes each record as a hash at "<collection>:<id>" and keeps
// the ids of a collection in a set at "<collection>".
type RedisStore struct {
	client redis.UniversalClient
	logger internal.Logger
}

func NewRedisStore(ctx context.Context, addr, password string, db int, logger internal.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Errorf("failed to connect to redis: %v", err)
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, logger: logger}, nil
}

func documentKey(collection, id string) string {
	return collection + ":" + id
}

func (r *RedisStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, documentKey(collection, id), record)
		pipe.SAdd(ctx, collection, id)
		return nil
	})
	if err != nil {
		r.logger.Errorf("failed to write document: %v", err)
		return fmt.Errorf("redis put %s: %w", documentKey(collection, id), err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ DocumentStore = (*RedisStore)(nil)
