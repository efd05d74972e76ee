package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/envelope"
	"licensegate/pkg/logger"
	"licensegate/pkg/repository"
	"licensegate/services/activity"
	"licensegate/services/license"
	"licensegate/services/tenant"

	"github.com/avast/retry-go/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	tenants     tenant.Resolver
	machine     *license.Machine
	codec       *envelope.Codec
	activity    activity.Log
	nonces      NonceGuard
	tokenSecret []byte
	window      time.Duration
	retryDelay  time.Duration
	now         func() time.Time
}

type ServiceParams struct {
	fx.In
	Config   *config.Config
	Tenants  tenant.Resolver
	Machine  *license.Machine
	Codec    *envelope.Codec
	Activity activity.Log `optional:"true"`
	Nonces   NonceGuard   `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		tenants:     p.Tenants,
		machine:     p.Machine,
		codec:       p.Codec,
		activity:    p.Activity,
		nonces:      p.Nonces,
		tokenSecret: []byte(p.Config.Gateway.TokenSecret),
		window:      p.Config.Gateway.ReplayWindow,
		retryDelay:  50 * time.Millisecond,
		now:         time.Now,
	}
}

// Redeem runs one redemption and returns the sealed response envelope.
// Tenant state is checked first, then the envelope and its freshness, and only
// then is the license store touched.
func (s *Service) Redeem(ctx context.Context, req Request) (sealed string, err error) {
	log := logger.FromContext(ctx).With(zap.String("owner", req.Owner), zap.String("game", req.Game))
	defer func() {
		o := outcome(err)
		redemptions.WithLabelValues(o).Inc()
		if err != nil {
			log.Info("redemption rejected", zap.String("outcome", o), zap.Error(err))
		}
	}()

	var snap tenant.Snapshot
	err = s.withRetry(ctx, func() error {
		var lerr error
		snap, lerr = s.tenants.Load(ctx, req.Owner)
		return lerr
	})
	if err != nil {
		return "", err
	}
	if !snap.Redeemable() {
		log.Info("tenant not redeemable",
			zap.Bool("maintenance", snap.Maintenance),
			zap.Bool("online", snap.Online),
			zap.String("maintenance_message", snap.MaintenanceMessage),
		)
		return "", tenant.ErrMaintenanceMode
	}

	var payload RedeemPayload
	if err := s.codec.Open(req.Payload, &payload); err != nil {
		return "", err
	}
	if payload.UserKey == "" || payload.Serial == "" {
		return "", fmt.Errorf("%w: payload without key or serial", ErrMalformedRequest)
	}
	if req.Serial != "" && req.Serial != payload.Serial {
		return "", envelope.ErrDecrypt
	}

	if err := s.checkFresh(payload.Timestamp); err != nil {
		return "", err
	}
	if err := s.claimNonce(ctx, req.Owner, payload.Nonce); err != nil {
		return "", err
	}

	var got license.Redemption
	err = s.withRetry(ctx, func() error {
		var rerr error
		got, rerr = s.machine.Redeem(ctx, req.Owner, req.Game, payload.UserKey, payload.Serial)
		return rerr
	})
	if err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			s.releaseNonce(ctx, req.Owner, payload.Nonce)
		}
		return "", err
	}

	s.record(ctx, got, payload.Serial)

	secret := s.tokenSecret
	if snap.Secret != "" {
		secret = []byte(snap.Secret)
	}

	token := Token(secret, req.Game, payload.UserKey, payload.Serial)
	expiresAt := got.ExpiresAt.Unix()

	sealed, err = s.codec.Seal(RedeemResponse{
		Status:    true,
		Token:     token,
		ExpiresAt: expiresAt,
		Credit:    snap.Credit,
		ModName:   snap.ModName,
		Signature: Sign(secret, token, expiresAt),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	log.Info("redemption accepted",
		zap.String("license_id", got.License.ID),
		zap.String("binding", got.Binding.String()),
		zap.Bool("activated", got.Activated),
	)
	return sealed, nil
}

// checkFresh compares whole seconds. Bounds are computed around now so an
// arbitrary client timestamp cannot overflow the comparison.
func (s *Service) checkFresh(ts int64) error {
	now := s.now().Unix()
	w := int64(s.window / time.Second)
	if ts < now-w || ts > now+w {
		return fmt.Errorf("%w: timestamp %d, server time %d", ErrStaleTimestamp, ts, now)
	}
	return nil
}

// claimNonce is skipped without a guard or a nonce. A failing guard lets the
// request through; the freshness window still bounds replays.
func (s *Service) claimNonce(ctx context.Context, owner, nonce string) error {
	if s.nonces == nil || nonce == "" {
		return nil
	}

	fresh, err := s.nonces.Claim(ctx, owner, nonce)
	if err != nil {
		logger.FromContext(ctx).Warn("nonce guard unavailable", zap.String("owner", owner), zap.Error(err))
		return nil
	}
	if !fresh {
		return ErrReplayedNonce
	}
	return nil
}

// releaseNonce forgets a claimed nonce after a transient store failure so the
// client can resend the same envelope.
func (s *Service) releaseNonce(ctx context.Context, owner, nonce string) {
	if s.nonces == nil || nonce == "" {
		return
	}
	if err := s.nonces.Release(context.WithoutCancel(ctx), owner, nonce); err != nil {
		logger.FromContext(ctx).Warn("failed to release nonce", zap.String("owner", owner), zap.Error(err))
	}
}

// withRetry retries fn once when the store reports a transient failure.
// Domain errors return immediately.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Attempts(2),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, repository.ErrStoreUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.FromContext(ctx).Warn("store unavailable, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

// record appends history for activations and newly bound devices. Failures are
// logged and never fail the redemption.
func (s *Service) record(ctx context.Context, got license.Redemption, device string) {
	if s.activity == nil {
		return
	}

	events := make([]activity.Event, 0, 2)
	base := activity.Event{
		LicenseID: got.License.ID,
		Actor:     got.License.Registrator,
		Owner:     got.License.Owner,
		At:        s.now().UTC(),
	}
	if got.Activated {
		ev := base
		ev.Info = fmt.Sprintf("Key %s activated until %s", got.License.UserKey, got.ExpiresAt.Format(time.RFC3339))
		events = append(events, ev)
	}
	if got.Binding == license.Append {
		ev := base
		ev.Info = fmt.Sprintf("Key %s bound device %s", got.License.UserKey, device)
		events = append(events, ev)
	}

	for _, ev := range events {
		if err := s.activity.Append(ctx, ev); err != nil {
			logger.FromContext(ctx).Warn("failed to append activity", zap.String("license_id", ev.LicenseID), zap.Error(err))
		}
	}
}
