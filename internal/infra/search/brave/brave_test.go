package brave

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:      "test-key",
		ResultCount: 10,
		SafeSearch:  "off",
		Endpoint:    srv.URL,
	}, log.New(io.Discard, "", 0))
}

func TestSearchRequestShape(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cat meme", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "off", r.URL.Query().Get("safesearch"))
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"results":[{"properties":{"url":"https://a.example/1.png"}}]}`))
	})

	urls, err := c.Search(context.Background(), "cat meme")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/1.png"}, urls)
}

func TestSearchPreservesProviderOrderWithThumbnailFallback(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"properties":{"url":"https://a.example/1.png"}},
			{"thumbnail":{"src":"https://b.example/thumb.jpg"}},
			{"properties":{},"thumbnail":{}},
			{"properties":{"url":"https://c.example/3.gif"}}
		]}`))
	})

	urls, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://a.example/1.png",
		"https://b.example/thumb.jpg",
		"https://c.example/3.gif",
	}, urls)
}

func TestSearchEmptyResults(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})
	urls, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, urls)
}

func TestSearchNonSuccessStatusIsNoResults(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	urls, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, urls)
}

func TestSearchGarbageBodyIsNoResults(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	urls, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, urls)
}
