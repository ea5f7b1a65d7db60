package domain

import "errors"

// Resolution errors, mapped to HTTP statuses at the transport edge.
var (
	ErrEmptyQuery    = errors.New("empty_query")    // 400
	ErrQueryTooLong  = errors.New("query_too_long") // 400
	ErrQuotaExceeded = errors.New("quota_exceeded") // 429
	ErrNoResults     = errors.New("no_results")     // 404
	ErrFetchFailed   = errors.New("fetch_failed")   // 502
)
