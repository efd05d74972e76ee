package gateway

import (
	"errors"

	"licensegate/pkg/envelope"
	"licensegate/pkg/repository"
	"licensegate/services/license"
	"licensegate/services/tenant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var redemptions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "licensegate_redemptions_total",
		Help: "Redemption attempts by outcome.",
	},
	[]string{"outcome"},
)

// outcome names err for logs and metrics. It never reaches the client.
func outcome(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, tenant.ErrTenantUnknown):
		return "tenant_unknown"
	case errors.Is(err, tenant.ErrMaintenanceMode):
		return "maintenance"
	case errors.Is(err, envelope.ErrDecrypt):
		return "decrypt_failed"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed"
	case errors.Is(err, ErrStaleTimestamp):
		return "stale_timestamp"
	case errors.Is(err, ErrReplayedNonce):
		return "replayed_nonce"
	case errors.Is(err, license.ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, license.ErrKeyInactive):
		return "key_inactive"
	case errors.Is(err, license.ErrKeyExpired):
		return "key_expired"
	case errors.Is(err, license.ErrDeviceLimitReached):
		return "device_limit"
	case errors.Is(err, ErrEncryptionFailed):
		return "encryption_failed"
	case errors.Is(err, repository.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
