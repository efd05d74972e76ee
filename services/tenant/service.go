package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/featureflags"
	"licensegate/pkg/logger"
	"licensegate/pkg/rediskey"
	"licensegate/pkg/repository"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// FeatureRedeemOnline lets operators take a tenant offline through the flag
// service without touching the panel.
const FeatureRedeemOnline = "redeem_online"

type Resolver interface {
	Load(ctx context.Context, owner string) (Snapshot, error)
}

type Service struct {
	repo    repository.Repository[Tenant]
	redis   *redis.Client
	flags   featureflags.FeatureFlag
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	secrets *xsync.MapOf[string, localSecret]
	now     func() time.Time
}

// localSecret keeps a tenant's token secret in process memory for as long as
// its snapshot may be served from redis.
type localSecret struct {
	value string
	until time.Time
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Config *config.Config
	Redis  *redis.Client             `optional:"true"`
	Flags  featureflags.FeatureFlag `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		repo:    repository.ProvideStore[Tenant](p.DB),
		redis:   p.Redis,
		flags:   p.Flags,
		ttl:     p.Config.Gateway.TenantCacheTTL,
		timeout: p.Config.Gateway.StoreTimeout,
		secrets: xsync.NewMapOf[string, localSecret](),
		now:     time.Now,
	}
}

// Load returns the current snapshot for owner. Concurrent misses for the same
// owner share one database read.
func (s *Service) Load(ctx context.Context, owner string) (Snapshot, error) {
	if owner == "" {
		return Snapshot{}, ErrTenantUnknown
	}

	snap, ok := s.cached(ctx, owner)
	if ok {
		// a snapshot cached by another process is usable only once this
		// process has read the secret itself
		snap.Secret, ok = s.secret(owner)
	}
	if !ok {
		v, err, _ := s.group.Do(owner, func() (any, error) {
			return s.fetch(ctx, owner)
		})
		if err != nil {
			return Snapshot{}, err
		}
		snap = v.(Snapshot)
	}

	s.applyFlags(ctx, &snap)
	return snap, nil
}

func (s *Service) cached(ctx context.Context, owner string) (Snapshot, bool) {
	if s.redis == nil {
		return Snapshot{}, false
	}

	raw, err := s.redis.Get(ctx, rediskey.BuildTenantKey(owner)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("tenant cache read failed", zap.String("owner", owner), zap.Error(err))
		}
		cacheLookups.WithLabelValues("miss").Inc()
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		cacheLookups.WithLabelValues("miss").Inc()
		return Snapshot{}, false
	}

	cacheLookups.WithLabelValues("hit").Inc()
	return snap, true
}

// fetch runs detached from the caller so that one cancelled request cannot
// fail every request waiting on the same flight.
func (s *Service) fetch(ctx context.Context, owner string) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	t, err := s.repo.FindOne(ctx, &Tenant{Owner: owner})
	if err != nil {
		logger.FromContext(ctx).Error("failed to load tenant", zap.String("owner", owner), zap.Error(err))
		return Snapshot{}, repository.Unavailable(err)
	}
	if t == nil {
		return Snapshot{}, ErrTenantUnknown
	}

	snap := t.ToSnapshot()
	if s.redis != nil && s.ttl > 0 {
		s.secrets.Store(owner, localSecret{value: snap.Secret, until: s.now().Add(s.ttl)})
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.redis.Set(ctx, rediskey.BuildTenantKey(owner), raw, s.ttl).Err(); err != nil {
				logger.FromContext(ctx).Warn("tenant cache write failed", zap.String("owner", owner), zap.Error(err))
			}
		}
	}

	return snap, nil
}

func (s *Service) secret(owner string) (string, bool) {
	sec, ok := s.secrets.Load(owner)
	if !ok || !s.now().Before(sec.until) {
		return "", false
	}
	return sec.value, true
}

func (s *Service) applyFlags(ctx context.Context, snap *Snapshot) {
	if s.flags == nil || !snap.Online {
		return
	}

	enabled, err := s.flags.IsEnabled(ctx, snap.Owner, FeatureRedeemOnline)
	if err != nil {
		logger.FromContext(ctx).Warn("feature flag lookup failed", zap.String("owner", snap.Owner), zap.Error(err))
		return
	}
	if !enabled {
		snap.Online = false
	}
}
