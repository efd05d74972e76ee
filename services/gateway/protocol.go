package gateway

import "errors"

var (
	ErrStaleTimestamp   = errors.New("gateway: stale timestamp")
	ErrReplayedNonce    = errors.New("gateway: replayed nonce")
	ErrMalformedRequest = errors.New("gateway: malformed request")
	ErrEncryptionFailed = errors.New("gateway: encryption failed")
)

// Request is one redemption attempt as it arrives on the wire.
type Request struct {
	Owner   string
	Game    string
	Payload string
	Serial  string
}

// RedeemPayload is the decrypted body of Request.Payload.
type RedeemPayload struct {
	UserKey   string `json:"user_key"`
	Serial    string `json:"serial"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}

// RedeemResponse is sealed into the success envelope.
type RedeemResponse struct {
	Status    bool   `json:"status"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Credit    string `json:"credit"`
	ModName   string `json:"mod_name"`
	Signature string `json:"signature"`
}
