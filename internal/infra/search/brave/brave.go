package brave

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultEndpoint = "https://api.search.brave.com/res/v1/images/search"

type Config struct {
	APIKey      string
	ResultCount int    // bounded number of candidates per search (5-10)
	SafeSearch  string // "off" | "moderate", deployment policy
	Endpoint    string // override for tests; empty means the real API
}

// Client wraps the Brave image-search API. Any non-success response or
// empty result set comes back as (nil, nil): "no results" is a normal
// outcome here, not a fault.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

func New(cfg Config, logger *log.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type searchResponse struct {
	Results []struct {
		Properties struct {
			URL string `json:"url"`
		} `json:"properties"`
		Thumbnail struct {
			Src string `json:"src"`
		} `json:"thumbnail"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", strconv.Itoa(c.cfg.ResultCount))
	q.Set("safesearch", c.cfg.SafeSearch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("search %q: %v", query, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("search %q: status %d", query, resp.StatusCode)
		return nil, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Printf("search %q: decode: %v", query, err)
		return nil, nil
	}

	// Provider order defines fetch attempt order; full-size URL first,
	// thumbnail as fallback per result.
	urls := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		switch {
		case r.Properties.URL != "":
			urls = append(urls, r.Properties.URL)
		case r.Thumbnail.Src != "":
			urls = append(urls, r.Thumbnail.Src)
		}
	}
	if len(urls) == 0 {
		return nil, nil
	}
	return urls, nil
}
