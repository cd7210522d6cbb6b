package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/study-planner-api/pkg/config"
)

const pingTimeout = 3 * time.Second

// NewRedis dials Redis and verifies the connection before handing it out.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

// Fingerprint derives a stable cache key from the JSON encoding of v.
// Struct fields marshal in declaration order and map keys are sorted, so
// equal values always share a key.
func Fingerprint(namespace string, v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", namespace, err)
	}
	sum := sha256.Sum256(payload)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}
