// Package cache provides a Redis-backed response cache for the search read
// path. A nil client disables caching entirely; callers degrade gracefully
// when Redis is unreachable.
package cache

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedisClient builds a client from REDIS_ADDR (or REDIS_HOST/REDIS_PORT),
// REDIS_PASSWORD, REDIS_DB, and REDIS_TLS. Returns nil when no server is
// configured or the ping fails, which disables caching.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		return nil
	}

	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			db = n
		}
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        db,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, caching disabled")
		return nil
	}
	return client
}

// ResponseCache stores serialized JSON responses keyed by request shape.
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a ResponseCache. The client may be nil.
func New(client *redis.Client, prefix string, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{client: client, prefix: prefix, ttl: ttl}
}

// Enabled reports whether a backing Redis client is present.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached body for key, if any.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	body, err := c.client.Get(ctx, c.prefix+":"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores a body under key. Failures are logged and ignored; the cache
// is best-effort.
func (c *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, c.prefix+":"+key, body, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Msg("cache set failed")
	}
}
