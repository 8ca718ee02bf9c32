package assets

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex encoded SHA-256 digest of text.
// Two texts are the same asset content iff their fingerprints are equal.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FingerprintBytes is Fingerprint for raw file contents.
func FingerprintBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SameContent reports whether a and b hold identical content.
func SameContent(a, b *Asset) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Fingerprint == b.Fingerprint
}
