package assets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var timeZero time.Time

func TestSimilarityBounds(t *testing.T) {
	text := "Use table driven tests and testify assertions"
	assert.Equal(t, 1.0, Similarity(text, text))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("a", ""))
	assert.Equal(t, 0.0, Similarity("", "something longer"))
	assert.Equal(t, 0.0, Similarity("ok", ""))
	assert.Equal(t, 0.0, Similarity("--", " "), "blank counts as empty")
	assert.Equal(t, 1.0, Similarity(" ", "\n"))
}

func TestSimilarityTokens(t *testing.T) {
	// short tokens and punctuation are ignored, case folded
	assert.Equal(t, 1.0, Similarity("Hello, WORLD! a an", "hello world"))

	// {alpha, beta, gamma} vs {alpha, beta, delta}: 2 / 4
	assert.InDelta(t, 0.5, Similarity("alpha beta gamma", "alpha beta delta"), 1e-9)

	assert.Equal(t, 0.0, Similarity("alpha beta", "gamma delta"))

	// only noise tokens on both sides behaves like two empty sets
	assert.Equal(t, 1.0, Similarity("a b", "c d"))
	// noise on one side only
	assert.Equal(t, 0.0, Similarity("a b", "alpha"))

	// length counts runes, not bytes
	assert.Equal(t, 1.0, Similarity("日本 alpha", "alpha"))
	assert.InDelta(t, 0.5, Similarity("日本語 alpha", "alpha"), 1e-9)
}

func TestSimilarityLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1, "nearly identical"},
		{0.9, "nearly identical"},
		{0.89, "very similar"},
		{0.7, "very similar"},
		{0.5, "similar"},
		{0.3, "somewhat different"},
		{0.29, "very different"},
		{0, "very different"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SimilarityLabel(tt.score), "score %v", tt.score)
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("foo"), Fingerprint("foo"))
	assert.NotEqual(t, Fingerprint("foo"), Fingerprint("bar"))
	assert.Equal(t, Fingerprint("foo"), FingerprintBytes([]byte("foo")))
	assert.Len(t, Fingerprint(""), 64)
}
