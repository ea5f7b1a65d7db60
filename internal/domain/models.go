package domain

import "time"

// MaxQueryLen bounds the normalized query accepted from the request path.
const MaxQueryLen = 200

// CacheRecord is the metadata index entry, one per normalized query.
// Field names match the stored JSON, kept deliberately short.
type CacheRecord struct {
	CreatedAt   int64  `json:"t"`  // unix seconds
	ContentType string `json:"ct"`
}

// RemainingTTL returns how much of the freshness window is left at now.
// Used only for the client-facing Cache-Control header; the stores enforce
// the authoritative expiry themselves.
func (r CacheRecord) RemainingTTL(ttl time.Duration, now time.Time) time.Duration {
	d := time.Unix(r.CreatedAt, 0).Add(ttl).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// ImageBlob is the stored image payload with its content type.
type ImageBlob struct {
	Bytes       []byte
	ContentType string
}

// Notification is a best-effort operational event for the push channel.
type Notification struct {
	Title    string
	Message  string
	Tags     string
	Priority int
}
