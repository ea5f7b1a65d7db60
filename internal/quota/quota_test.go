package quota

import (
	"context"
	"io"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	data map[string][]byte
	ttls map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	return f.data[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, val []byte, ttlSeconds int) error {
	f.data[key] = val
	f.ttls[key] = ttlSeconds
	return nil
}

func (f *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(string(f.data[key]), 10, 64)
	n++
	f.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (f *fakeCache) Expire(_ context.Context, key string, ttlSeconds int) error {
	f.ttls[key] = ttlSeconds
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close()                     {}

func newTracker(cache *fakeCache, limit int) *Tracker {
	t := New(cache, limit, 48*time.Hour, log.New(io.Discard, "", 0))
	t.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return t
}

func TestCheckFreshClient(t *testing.T) {
	tr := newTracker(newFakeCache(), 25)
	count, allowed := tr.Check(context.Background(), "1.2.3.4")
	assert.Zero(t, count)
	assert.True(t, allowed)
}

func TestCheckNeverMutates(t *testing.T) {
	cache := newFakeCache()
	tr := newTracker(cache, 25)
	for i := 0; i < 5; i++ {
		_, _ = tr.Check(context.Background(), "1.2.3.4")
	}
	assert.Empty(t, cache.data)
}

func TestRecordIncrementsMonotonically(t *testing.T) {
	cache := newFakeCache()
	tr := newTracker(cache, 25)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, tr.Record(ctx, "1.2.3.4"))
		count, _ := tr.Check(ctx, "1.2.3.4")
		assert.Equal(t, i, count)
	}
}

func TestLimitRejectedWithoutIncrement(t *testing.T) {
	cache := newFakeCache()
	tr := newTracker(cache, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, allowed := tr.Check(ctx, "1.2.3.4")
		require.True(t, allowed)
		require.NoError(t, tr.Record(ctx, "1.2.3.4"))
	}

	count, allowed := tr.Check(ctx, "1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, 3, count)

	// the rejected check must not have touched the counter
	count, _ = tr.Check(ctx, "1.2.3.4")
	assert.Equal(t, 3, count)
}

func TestTTLSetOnFirstIncrementOnly(t *testing.T) {
	cache := newFakeCache()
	tr := newTracker(cache, 25)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "1.2.3.4"))
	key := tr.key("1.2.3.4")
	require.Equal(t, 48*60*60, cache.ttls[key])

	cache.ttls[key] = 7 // sentinel: a second Record must not reset it
	require.NoError(t, tr.Record(ctx, "1.2.3.4"))
	assert.Equal(t, 7, cache.ttls[key])
}

func TestKeyIsPerClientPerUTCDay(t *testing.T) {
	tr := newTracker(newFakeCache(), 25)
	assert.Equal(t, "quota:1.2.3.4:2026-08-30", tr.key("1.2.3.4"))
	assert.NotEqual(t, tr.key("1.2.3.4"), tr.key("5.6.7.8"))
}

func TestClientsAreIndependent(t *testing.T) {
	cache := newFakeCache()
	tr := newTracker(cache, 1)
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, "1.2.3.4"))
	_, allowed := tr.Check(ctx, "1.2.3.4")
	assert.False(t, allowed)

	_, allowed = tr.Check(ctx, "5.6.7.8")
	assert.True(t, allowed)
}
