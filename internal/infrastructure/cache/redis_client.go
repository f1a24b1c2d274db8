// Package cache implementa sobre Redis las claves de idempotencia de creación de documentos.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
)

const keyPrefix = "idempotency:"

// Client envuelve redis.Client.
type Client struct {
	rdb *redis.Client
}

var _ ports.IdempotencyStore = (*Client)(nil)

// NewClient conecta con Redis y verifica la conexión con PING.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewFromRedis(rdb), nil
}

// NewFromRedis usa un cliente ya construido.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close cierra la conexión.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Claim reserva la clave con SETNX; el valor vacío marca la petición en curso.
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	ok, err := c.rdb.SetNX(ctx, keyPrefix+key, "", noExpiry(ttl)).Result()
	if err != nil {
		return false, "", fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return true, "", nil
	}
	val, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// expiró entre SETNX y GET
		return c.Claim(ctx, key, ttl)
	}
	if err != nil {
		return false, "", fmt.Errorf("redis get: %w", err)
	}
	return false, val, nil
}

// Complete guarda el ID del documento creado.
func (c *Client) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, keyPrefix+key, value, noExpiry(ttl)).Err()
}

// Release borra la clave.
func (c *Client) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, keyPrefix+key).Err()
}

// noExpiry normaliza ttl <= 0 a 0 (sin expiración); -1 sería KeepTTL en go-redis.
func noExpiry(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
