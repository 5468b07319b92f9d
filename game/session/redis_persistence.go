package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/grid-escape/game/service"
)

// DefaultRedisPrefix namespaces session keys
const DefaultRedisPrefix = "grid-escape:session:"

// RedisPersistence implements SessionPersistence on a Redis keyspace. Each
// session is one string key holding the JSON document.
type RedisPersistence struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	codec  codec
}

// NewRedisClient connects to addr and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisPersistence stores sessions under prefix. A zero ttl keeps keys
// forever; otherwise every save refreshes the expiry.
func NewRedisPersistence(client *redis.Client, prefix string, ttl time.Duration, configManager service.ConfigManager) *RedisPersistence {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisPersistence{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		codec:  codec{configs: configManager},
	}
}

// Save persists a session
func (rp *RedisPersistence) Save(ctx context.Context, session *service.Session) error {
	payload, err := rp.codec.encode(session)
	if err != nil {
		return err
	}

	if err := rp.client.Set(ctx, rp.key(session.ID), payload, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session in Redis: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(ctx context.Context, id string) (*service.Session, error) {
	payload, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	return rp.codec.decode(payload)
}

// Delete removes a session
func (rp *RedisPersistence) Delete(ctx context.Context, id string) error {
	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (rp *RedisPersistence) ListAll(ctx context.Context) ([]string, error) {
	var ids []string
	iter := rp.client.Scan(ctx, 0, rp.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), rp.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions in Redis: %w", err)
	}
	return ids, nil
}

// Exists checks if a session key exists
func (rp *RedisPersistence) Exists(ctx context.Context, id string) (bool, error) {
	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session in Redis: %w", err)
	}
	return n > 0, nil
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + strings.ToLower(id)
}
