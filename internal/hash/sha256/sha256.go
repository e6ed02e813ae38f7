// Package sha256 derives content digests for HTTP validators.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the lowercase hex SHA-256 digest of data.
func Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ETag returns a strong entity tag for data. The first 16 bytes of the
// digest are enough to tell cached results apart.
func ETag(data []byte) string {
	return `"` + Hex(data)[:32] + `"`
}
