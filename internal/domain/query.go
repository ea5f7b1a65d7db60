package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// NormalizeQuery canonicalizes a raw URL path into a stable cache key.
// Percent-decoding treats '+' as space; input that fails to decode is
// used as-is. The result is lower-cased, trimmed, stripped of ASCII
// control characters and trailing slashes, with whitespace runs
// collapsed to a single space. Returns "" for queries that normalize
// to nothing.
func NormalizeQuery(rawPath string) string {
	s, err := url.QueryUnescape(rawPath)
	if err != nil {
		s = rawPath
	}
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "/")
	return strings.Join(strings.Fields(s), " ")
}

// QueryDigest returns the hex SHA-256 of a normalized query.
func QueryDigest(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// BlobKey is the content-addressed object key for a query digest.
func BlobKey(digest string) string { return "sha256/" + digest }
