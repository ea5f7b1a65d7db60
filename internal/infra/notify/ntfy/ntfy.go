package ntfy

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/direct-img/direct-img.link/internal/domain"
)

// Client pushes events to an ntfy topic. Delivery is fire-and-forget:
// Push returns immediately, failures are logged and discarded.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *log.Logger
}

// New builds a client for the given topic URL. An empty URL disables
// the channel entirely; a URL without a scheme gets https.
func New(rawURL string, logger *log.Logger) *Client {
	endpoint := rawURL
	if endpoint != "" && !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

func (c *Client) Push(n domain.Notification) {
	if c.endpoint == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(n.Message))
		if err != nil {
			c.logger.Printf("push %q: %v", n.Title, err)
			return
		}
		req.Header.Set("Title", n.Title)
		req.Header.Set("Tags", n.Tags)
		req.Header.Set("Priority", strconv.Itoa(n.Priority))

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Printf("push %q: %v", n.Title, err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			c.logger.Printf("push %q: status %d", n.Title, resp.StatusCode)
		}
	}()
}
