package domain

import "context"

// ImageSearcher queries an external image-search provider and returns
// candidate image URLs in provider order. An empty slice means "no
// results"; transport faults surface as errors and are treated the
// same way by callers.
type ImageSearcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}
