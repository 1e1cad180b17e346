package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "mediation-cms:idempotency:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Open crea el cliente y verifica la conexión con un PING.
func Open(ctx context.Context, cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Dedupe guarda Idempotency-Key => submission id con SETNX + TTL.
type Dedupe struct {
	client goredis.UniversalClient
}

func NewDedupe(client goredis.UniversalClient) *Dedupe {
	return &Dedupe{client: client}
}

func (d *Dedupe) Claim(ctx context.Context, key, id string, ttl time.Duration) (string, bool, error) {
	k := keyPrefix + key

	ok, err := d.client.SetNX(ctx, k, id, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return id, true, nil
	}

	owner, err := d.client.Get(ctx, k).Result()
	if errors.Is(err, goredis.Nil) {
		// expiró entre SETNX y GET: se reintenta una vez
		ok, err = d.client.SetNX(ctx, k, id, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return id, true, nil
		}
		owner, err = d.client.Get(ctx, k).Result()
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return owner, false, nil
}

func (d *Dedupe) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
