package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Token is stable for a (game, key, device) triple under one secret, so a
// reconnecting device keeps the token it cached. Fields are length-prefixed,
// so no two distinct triples share a MAC input.
func Token(secret []byte, game, userKey, device string) string {
	return mac(secret, frame(game, userKey, device))
}

func frame(fields ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}

// Sign binds a token to its expiry so a client can detect a rewritten expiry.
func Sign(secret []byte, token string, expiresAt int64) string {
	return mac(secret, token+"|"+strconv.FormatInt(expiresAt, 10))
}

func mac(secret []byte, msg string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}
