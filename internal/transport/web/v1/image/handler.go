package image

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/direct-img/direct-img.link/internal/domain"
	"github.com/direct-img/direct-img.link/internal/fetch"
	"github.com/direct-img/direct-img.link/internal/imagecache"
	"github.com/direct-img/direct-img.link/internal/quota"
	"github.com/direct-img/direct-img.link/internal/transport/web/logx"
	"github.com/direct-img/direct-img.link/internal/transport/web/mw"
	v1 "github.com/direct-img/direct-img.link/internal/transport/web/v1"
)

// Handler is the request orchestrator: normalize → cache probe →
// quota check → upstream search → resilient fetch → persist → respond.
type Handler struct {
	Log    *log.Logger
	Cache  *imagecache.Store
	Quota  *quota.Tracker
	Search domain.ImageSearcher
	Fetch  *fetch.Fetcher
	Notify domain.Notifier

	GlobalDeadline time.Duration // shared across all candidate attempts
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	const op = "image.resolve"
	reqID := mw.RequestIDFromCtx(r.Context())

	// The raw (still percent-encoded) path is the query.
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/")
	query := domain.NormalizeQuery(raw)
	if query == "" {
		logx.Error(h.Log, reqID, op, "empty query", domain.ErrEmptyQuery)
		v1.WriteError(w, http.StatusBadRequest, "Empty query")
		return
	}
	if len(query) > domain.MaxQueryLen {
		logx.Error(h.Log, reqID, op, "query too long", domain.ErrQueryTooLong, "len", len(query))
		v1.WriteError(w, http.StatusBadRequest, "Query too long (max 200 characters)")
		return
	}

	// Cache probe runs before quota: cached content stays servable
	// even for clients that exhausted their daily limit.
	if hit, ok := h.Cache.Lookup(r.Context(), query); ok {
		logx.Info(h.Log, reqID, op, "cache hit", "query", query, "bytes", len(hit.Bytes))
		h.writeImage(w, hit.ContentType, int(hit.Remaining.Seconds()), hit.Bytes)
		return
	}

	// Cancellation comes from the computed deadlines, not the client:
	// a resolution in flight finishes and populates the cache even if
	// the client goes away.
	ctx := context.WithoutCancel(r.Context())

	clientID := clientID(r)
	count, allowed := h.Quota.Check(ctx, clientID)
	if !allowed {
		logx.Info(h.Log, reqID, op, "quota exhausted", "client", clientID, "count", count)
		h.Notify.Push(domain.Notification{
			Title:    "Rate Limit Hit",
			Message:  fmt.Sprintf("IP %s reached limit for: %s", clientID, query),
			Tags:     "warning,no_entry",
			Priority: 2,
		})
		v1.WriteError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Daily search limit reached (%d/day). Cached images remain available.", h.Quota.Limit()))
		return
	}

	h.Notify.Push(domain.Notification{
		Title:    "New Search",
		Message:  fmt.Sprintf("Query: %s (Search #%d for %s)", query, count+1, clientID),
		Tags:     "mag",
		Priority: 3,
	})

	candidates, err := h.Search.Search(ctx, query)
	if err != nil || len(candidates) == 0 {
		logx.Info(h.Log, reqID, op, "no search results", "query", query)
		h.Notify.Push(domain.Notification{
			Title:    "Search Failed",
			Message:  "No results found for: " + query,
			Tags:     "question",
			Priority: 3,
		})
		v1.WriteError(w, http.StatusNotFound, "No image found for query")
		return
	}

	deadline := time.Now().Add(h.GlobalDeadline)
	blob, ok := h.Fetch.Resolve(ctx, candidates, deadline)
	if !ok {
		logx.Error(h.Log, reqID, op, "all candidates failed", domain.ErrFetchFailed,
			"query", query, "candidates", len(candidates))
		h.Notify.Push(domain.Notification{
			Title:    "Fetch Error (502)",
			Message:  "All sources failed for: " + query,
			Tags:     "boom,x",
			Priority: 4,
		})
		v1.WriteError(w, http.StatusBadGateway, "Failed to fetch image from all available sources")
		return
	}

	// Persist both tiers, then account the quota. A failed write is
	// logged but the image is served anyway: the cache is not a
	// system of record.
	if err := h.Cache.Store(ctx, query, blob.Bytes, blob.ContentType); err != nil {
		logx.Error(h.Log, reqID, op, "cache store failed", err, "query", query)
	}
	if err := h.Quota.Record(ctx, clientID); err != nil {
		logx.Error(h.Log, reqID, op, "quota record failed", err, "client", clientID)
	}

	logx.Info(h.Log, reqID, op, "resolved", "query", query, "bytes", len(blob.Bytes), "ct", blob.ContentType)
	h.writeImage(w, blob.ContentType, int(h.Cache.TTL().Seconds()), blob.Bytes)
}

func (h *Handler) writeImage(w http.ResponseWriter, contentType string, maxAgeSec int, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSec))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(data)
}

// clientID identifies the caller for quota accounting: proxy headers
// first, then the socket peer.
func clientID(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return "unknown"
}
