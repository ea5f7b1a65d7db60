package imagecache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/direct-img/direct-img.link/internal/domain"
)

// Store coordinates the two cache tiers: the metadata index (small
// JSON records keyed by normalized query) and the blob store (image
// bytes keyed by content digest). The tiers expire independently; a
// record whose blob is gone counts as a miss and self-heals on the
// next successful resolution.
type Store struct {
	cache  domain.Cache
	blobs  domain.BlobStorage
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

type Hit struct {
	Bytes       []byte
	ContentType string
	Remaining   time.Duration // freshness left, for the Cache-Control header only
}

func New(cache domain.Cache, blobs domain.BlobStorage, ttl time.Duration, logger *log.Logger) *Store {
	return &Store{cache: cache, blobs: blobs, ttl: ttl, logger: logger, now: time.Now}
}

// Lookup probes both tiers. Read errors are not distinguished from
// normal misses; the caller re-resolves either way.
func (s *Store) Lookup(ctx context.Context, query string) (*Hit, bool) {
	b, err := s.cache.Get(ctx, domain.CacheKeyQuery(query))
	if err != nil || len(b) == 0 {
		return nil, false
	}
	var rec domain.CacheRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		s.logger.Printf("bad cache record for %q: %v", query, err)
		return nil, false
	}

	blob, err := s.blobs.Get(ctx, domain.BlobKey(domain.QueryDigest(query)))
	if err != nil || blob == nil {
		// Record without blob: treat as miss, the next resolution
		// repopulates both tiers.
		return nil, false
	}

	ct := rec.ContentType
	if ct == "" {
		ct = blob.ContentType
	}
	return &Hit{
		Bytes:       blob.Bytes,
		ContentType: ct,
		Remaining:   rec.RemainingTTL(s.ttl, s.now()),
	}, true
}

// Store writes both tiers with the identical TTL. Blob first; a
// dangling metadata record would self-heal, a blob without a record is
// just unreferenced until the lifecycle rule collects it.
func (s *Store) Store(ctx context.Context, query string, data []byte, contentType string) error {
	key := domain.BlobKey(domain.QueryDigest(query))
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return err
	}
	rec := domain.CacheRecord{CreatedAt: s.now().Unix(), ContentType: contentType}
	buf, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, domain.CacheKeyQuery(query), buf, int(s.ttl.Seconds()))
}

// TTL is the full freshness window for newly created entries.
func (s *Store) TTL() time.Duration { return s.ttl }
