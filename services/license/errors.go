package license

import "errors"

var (
	ErrKeyNotFound        = errors.New("license: key not found")
	ErrKeyInactive        = errors.New("license: key inactive")
	ErrKeyExpired         = errors.New("license: key expired")
	ErrDeviceLimitReached = errors.New("license: device limit reached")
)
