package domain

import "context"

// Cache keys live here so they don't scatter across the code.
func CacheKeyQuery(query string) string { return "img:" + query }
func QuotaKey(clientID, day string) string {
	return "quota:" + clientID + ":" + day
}

// Cache is a small k/v interface with per-key expiration. The
// implementation is Redis; Get returns (nil, nil) on absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttlSeconds int) error
	Ping(context.Context) error
	Close()
}
