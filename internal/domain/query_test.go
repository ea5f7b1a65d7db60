package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "cat", "cat"},
		{"case folded", "CatMeme", "catmeme"},
		{"surrounding whitespace", "  Cat/Meme ", "cat/meme"},
		{"percent encoded", "cat%20meme", "cat meme"},
		{"plus as space", "cat+meme", "cat meme"},
		{"encoded slash", "cat%2Fmeme", "cat/meme"},
		{"trailing slashes", "cats///", "cats"},
		{"control chars stripped", "cat\x00\x1fmeme", "catmeme"},
		{"whitespace collapsed", "big   fluffy \t dog", "big fluffy dog"},
		{"empty", "", ""},
		{"only slashes", "///", ""},
		{"only spaces", "%20%20%20", ""},
		{"bad escape falls back to raw", "100%zz", "100%zz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeQuery(tc.in))
		})
	}
}

func TestNormalizeQueryIdempotent(t *testing.T) {
	inputs := []string{
		"  Cat/Meme ", "cat%20meme", "big   fluffy dog", "cats///",
		"CAT\x01meme", "weird%2Fpath%2Fhere",
	}
	for _, in := range inputs {
		once := NormalizeQuery(in)
		require.Equal(t, once, NormalizeQuery(once), "input %q", in)
	}
}

func TestQueryDigest(t *testing.T) {
	d1 := QueryDigest("cat/meme")
	d2 := QueryDigest("cat/meme")
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
	assert.NotEqual(t, d1, QueryDigest("dog/meme"))

	// fixed vector so the blob keys stay stable across releases
	assert.Equal(t,
		"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae",
		QueryDigest("foo"))
}

func TestBlobKey(t *testing.T) {
	assert.Equal(t, "sha256/abc", BlobKey("abc"))
}
