package license

//go:generate mockgen -source $GOFILE -destination store_mocks.go -package $GOPACKAGE

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/logger"
	"licensegate/pkg/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the persistence contract the state machine depends on. Both write
// operations are conditional so they stay correct across many gateway
// instances sharing one database.
type Store interface {
	// Find returns ErrKeyNotFound when no key matches.
	Find(ctx context.Context, owner, game, userKey string) (*License, error)
	// TryActivate sets expires_at only while it is still null. It returns the
	// value stored afterwards, whoever wrote it, and whether this call wrote it.
	TryActivate(ctx context.Context, id string, expiresAt time.Time) (time.Time, bool, error)
	// TryBindDevice applies Decide to the stored device list atomically.
	TryBindDevice(ctx context.Context, id, device string, maxDevices int) (Decision, error)
}

type GormStore struct {
	db          *gorm.DB
	repo        repository.Repository[License]
	timeout     time.Duration
	maxAttempts int
}

type StoreParams struct {
	fx.In
	DB     *gorm.DB
	Config *config.Config
}

func NewStore(p StoreParams) *GormStore {
	attempts := p.Config.Gateway.MaxBindAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return &GormStore{
		db:          p.DB,
		repo:        repository.ProvideStore[License](p.DB),
		timeout:     p.Config.Gateway.StoreTimeout,
		maxAttempts: attempts,
	}
}

func (s *GormStore) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// writeCtx detaches from caller cancellation. A write either lands whole or
// not at all, and the timeout still bounds it.
func (s *GormStore) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *GormStore) Find(ctx context.Context, owner, game, userKey string) (*License, error) {
	ctx, cancel := s.readCtx(ctx)
	defer cancel()

	lic, err := s.repo.FindOne(ctx, &License{Owner: owner, Game: game, UserKey: userKey})
	if err != nil {
		return nil, repository.Unavailable(err)
	}
	if lic == nil {
		return nil, ErrKeyNotFound
	}
	return lic, nil
}

func (s *GormStore) TryActivate(ctx context.Context, id string, expiresAt time.Time) (time.Time, bool, error) {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	expiresAt = expiresAt.UTC().Truncate(time.Second)

	res := s.db.WithContext(ctx).
		Model(&License{}).
		Where("id = ? AND expires_at IS NULL", id).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return time.Time{}, false, repository.Unavailable(res.Error)
	}
	if res.RowsAffected == 1 {
		return expiresAt, true, nil
	}

	// lost the race, or the key vanished
	var row License
	if err := s.db.WithContext(ctx).Select("id", "expires_at").Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, ErrKeyNotFound
		}
		return time.Time{}, false, repository.Unavailable(err)
	}
	if row.ExpiresAt == nil {
		return time.Time{}, false, repository.Unavailable(fmt.Errorf("activation of %s not applied", id))
	}

	logger.FromContext(ctx).Info("activation race lost, adopting stored expiry",
		zap.String("license_id", id),
		zap.Time("expires_at", *row.ExpiresAt),
	)
	return row.ExpiresAt.UTC(), false, nil
}

func (s *GormStore) TryBindDevice(ctx context.Context, id, device string, maxDevices int) (Decision, error) {
	ctx, cancel := s.writeCtx(ctx)
	defer cancel()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var row License
		if err := s.db.WithContext(ctx).Select("id", "devices", "version").Where("id = ?", id).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrKeyNotFound
			}
			return 0, repository.Unavailable(err)
		}

		decision := Decide(row.Devices, device, maxDevices)
		if decision != Append {
			return decision, nil
		}

		next := append(slices.Clone([]string(row.Devices)), device)
		res := s.db.WithContext(ctx).
			Model(&License{}).
			Where("id = ? AND version = ?", id, row.Version).
			Updates(map[string]any{
				"devices": datatypes.JSONSlice[string](next),
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return 0, repository.Unavailable(res.Error)
		}
		if res.RowsAffected == 1 {
			return Append, nil
		}

		logger.FromContext(ctx).Debug("device list changed concurrently, retrying",
			zap.String("license_id", id),
			zap.Int("attempt", attempt),
		)
	}

	return 0, repository.Unavailable(fmt.Errorf("device binding for %s still contended after %d attempts", id, s.maxAttempts))
}
