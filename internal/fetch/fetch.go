package fetch

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/direct-img/direct-img.link/internal/domain"
)

// guardWindow: never start an attempt that can't possibly finish.
const guardWindow = 500 * time.Millisecond

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"
)

type Config struct {
	AttemptTimeout time.Duration // per-candidate cap
	MaxBytes       int64         // hard payload ceiling
}

// Fetcher tries candidate URLs strictly in order under a shared
// wall-clock deadline. Network errors, timeouts and validation
// failures are all the same outcome: move to the next candidate.
type Fetcher struct {
	client *http.Client
	cfg    Config
	logger *log.Logger
}

func New(cfg Config, logger *log.Logger) *Fetcher {
	return &Fetcher{client: &http.Client{}, cfg: cfg, logger: logger}
}

// Resolve returns the first candidate that yields a valid image, or
// (nil, false) when every candidate fails or the deadline runs out.
func (f *Fetcher) Resolve(ctx context.Context, candidates []string, deadline time.Time) (*domain.ImageBlob, bool) {
	for i, u := range candidates {
		remaining := time.Until(deadline)
		if remaining <= guardWindow {
			f.logger.Printf("deadline reached, %d candidate(s) unattempted", len(candidates)-i)
			break
		}
		timeout := f.cfg.AttemptTimeout
		if remaining < timeout {
			timeout = remaining
		}
		if blob := f.attempt(ctx, u, timeout); blob != nil {
			return blob, true
		}
	}
	return nil, false
}

// attempt fetches one candidate. A nil result covers every failure
// kind equally; candidates are never retried.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, timeout time.Duration) *domain.ImageBlob {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Printf("fetch %s: %v", rawURL, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return nil
	}
	// Declared size: fast-path rejection before transferring anything.
	if resp.ContentLength > f.cfg.MaxBytes {
		return nil
	}
	// Actual size: chunked responses carry no Content-Length.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		f.logger.Printf("fetch %s: read: %v", rawURL, err)
		return nil
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil
	}
	return &domain.ImageBlob{Bytes: data, ContentType: ct}
}
