package quota

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/direct-img/direct-img.link/internal/domain"
)

// Tracker counts upstream resolutions per client per UTC calendar day.
// Check never mutates; Record is called by the orchestrator only after
// a successful resolution, so failed resolutions don't consume quota.
type Tracker struct {
	cache  domain.Cache
	limit  int
	ttl    time.Duration // must exceed 24h to ride out clock skew
	logger *log.Logger
	now    func() time.Time
}

func New(cache domain.Cache, limit int, ttl time.Duration, logger *log.Logger) *Tracker {
	return &Tracker{cache: cache, limit: limit, ttl: ttl, logger: logger, now: time.Now}
}

func (t *Tracker) Limit() int { return t.limit }

// Check returns the client's current count for today and whether a new
// upstream resolution is allowed. Read errors count as zero; quota is
// a cost bound, not a security boundary.
func (t *Tracker) Check(ctx context.Context, clientID string) (int, bool) {
	b, err := t.cache.Get(ctx, t.key(clientID))
	if err != nil || len(b) == 0 {
		return 0, t.limit > 0
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		t.logger.Printf("bad quota value for %q: %v", clientID, err)
		return 0, t.limit > 0
	}
	return n, n < t.limit
}

// Record increments today's counter, setting the TTL when the key is
// created. The counter is never decremented.
func (t *Tracker) Record(ctx context.Context, clientID string) error {
	key := t.key(clientID)
	n, err := t.cache.Incr(ctx, key)
	if err != nil {
		return err
	}
	if n == 1 {
		return t.cache.Expire(ctx, key, int(t.ttl.Seconds()))
	}
	return nil
}

func (t *Tracker) key(clientID string) string {
	return domain.QuotaKey(clientID, t.now().UTC().Format("2006-01-02"))
}
