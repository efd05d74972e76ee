package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewNonce returns 16 random bytes, hex encoded.
func NewNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
