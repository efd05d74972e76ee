package license

import (
	"context"
	"time"

	"licensegate/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Redemption is the state of a key after it was accepted for a device.
type Redemption struct {
	License   *License
	ExpiresAt time.Time
	// Activated is true when this redemption fixed the expiry.
	Activated bool
	Binding   Decision
}

// Machine walks a key through lookup, expiry, activation and device binding.
type Machine struct {
	store Store
	now   func() time.Time
}

type MachineParams struct {
	fx.In
	Store Store
}

func NewMachine(p MachineParams) *Machine {
	return &Machine{store: p.Store, now: time.Now}
}

// WithClock returns a copy of m reading time from now.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Machine) Redeem(ctx context.Context, owner, game, userKey, device string) (Redemption, error) {
	log := logger.FromContext(ctx).With(zap.String("owner", owner), zap.String("game", game))

	lic, err := m.store.Find(ctx, owner, game, userKey)
	if err != nil {
		return Redemption{}, err
	}
	log = log.With(zap.String("license_id", lic.ID))

	if lic.Status != StatusActive {
		return Redemption{}, ErrKeyInactive
	}

	now := m.now()
	out := Redemption{License: lic}

	if lic.Activated() {
		if lic.ExpiresAt.Before(now) {
			return Redemption{}, ErrKeyExpired
		}
		out.ExpiresAt = lic.ExpiresAt.UTC()
	} else {
		want := now.Add(lic.Lifetime()).UTC().Truncate(time.Second)
		got, applied, err := m.store.TryActivate(ctx, lic.ID, want)
		if err != nil {
			return Redemption{}, err
		}
		out.ExpiresAt = got
		out.Activated = applied
		if applied {
			log.Info("license activated", zap.Time("expires_at", got))
		}
	}

	decision, err := m.store.TryBindDevice(ctx, lic.ID, device, lic.MaxDevices)
	if err != nil {
		return Redemption{}, err
	}
	if decision == Reject {
		return Redemption{}, ErrDeviceLimitReached
	}
	out.Binding = decision

	if decision == Append {
		log.Info("device bound", zap.Int("max_devices", lic.MaxDevices))
	}

	return out, nil
}
