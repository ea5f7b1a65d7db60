package domain

import "context"

// BlobStorage holds image payloads addressed by content key
// ("sha256/<hex>"). Get returns (nil, nil) when the object is absent,
// which callers must treat as a cache miss, not an error.
type BlobStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (*ImageBlob, error)
	Ping(context.Context) error
}
