package license

import (
	"context"
	"sync"
	"testing"
	"time"

	"licensegate/pkg/config"
	"licensegate/pkg/repository"
	"licensegate/services/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &License{})

	cfg := &config.Config{}
	cfg.Gateway.StoreTimeout = 5 * time.Second
	cfg.Gateway.MaxBindAttempts = 5

	return NewStore(StoreParams{DB: db, Config: cfg}), db
}

func seedLicense(t *testing.T, db *gorm.DB, lic License) *License {
	t.Helper()

	if lic.Owner == "" {
		lic.Owner = "acme"
	}
	if lic.Game == "" {
		lic.Game = "PUBG"
	}
	if lic.Status == "" {
		lic.Status = StatusActive
	}
	if lic.Devices == nil {
		lic.Devices = datatypes.JSONSlice[string]{}
	}
	require.NoError(t, db.Create(&lic).Error)
	return &lic
}

func reload(t *testing.T, db *gorm.DB, id string) License {
	t.Helper()

	var lic License
	require.NoError(t, db.Where("id = ?", id).Take(&lic).Error)
	return lic
}

func TestFind(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "AAAA-BBBB-CCCC-DDDD", MaxDevices: 1})

	got, err := s.Find(context.Background(), "acme", "PUBG", "AAAA-BBBB-CCCC-DDDD")
	require.NoError(t, err)
	require.Equal(t, "1", got.ID)

	_, err = s.Find(context.Background(), "acme", "FREEFIRE", "AAAA-BBBB-CCCC-DDDD")
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = s.Find(context.Background(), "other", "PUBG", "AAAA-BBBB-CCCC-DDDD")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFindStoreUnavailable(t *testing.T) {
	s, db := newTestStore(t)
	testutil.CloseDB(t, db)

	_, err := s.Find(context.Background(), "acme", "PUBG", "k")
	require.ErrorIs(t, err, repository.ErrStoreUnavailable)
}

func TestTryActivateOnce(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 1})

	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got, applied, err := s.TryActivate(context.Background(), "1", first)
	require.NoError(t, err)
	require.True(t, applied)
	require.True(t, got.Equal(first))

	got, applied, err = s.TryActivate(context.Background(), "1", first.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, applied)
	require.True(t, got.Equal(first), "second activation must adopt the stored expiry, got %s", got)

	stored := reload(t, db, "1")
	require.NotNil(t, stored.ExpiresAt)
	require.True(t, stored.ExpiresAt.Equal(first))
}

func TestTryActivateTruncatesToSeconds(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 1})

	got, _, err := s.TryActivate(context.Background(), "1", time.Date(2024, 5, 1, 12, 0, 0, 999_000_000, time.UTC))
	require.NoError(t, err)
	require.Zero(t, got.Nanosecond())
}

func TestTryActivateUnknownKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.TryActivate(context.Background(), "missing", time.Now())
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestTryActivateRace(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 1})

	const racers = 8
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make([]time.Time, racers)
	applied := make([]bool, racers)
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], applied[i], errs[i] = s.TryActivate(context.Background(), "1", base.Add(time.Duration(i)*time.Minute))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i])
		require.True(t, results[i].Equal(results[0]))
		if applied[i] {
			winners++
		}
	}
	require.Equal(t, 1, winners)

	stored := reload(t, db, "1")
	require.True(t, stored.ExpiresAt.Equal(results[0]))
}

func TestTryBindDeviceCeiling(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 2})
	ctx := context.Background()

	steps := []struct {
		device string
		want   Decision
	}{
		{"device-a", Append},
		{"device-b", Append},
		{"device-c", Reject},
		{"device-a", AlreadyBound},
		{"device-b", AlreadyBound},
	}
	for _, step := range steps {
		got, err := s.TryBindDevice(ctx, "1", step.device, 2)
		require.NoError(t, err)
		require.Equal(t, step.want, got, step.device)
	}

	stored := reload(t, db, "1")
	require.Equal(t, []string{"device-a", "device-b"}, []string(stored.Devices))
	require.EqualValues(t, 2, stored.Version)
}

func TestTryBindDeviceLastSlotRace(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 2, Devices: datatypes.JSONSlice[string]{"device-a"}})

	devices := []string{"device-b", "device-c", "device-d", "device-e"}

	var wg sync.WaitGroup
	decisions := make([]Decision, len(devices))
	errs := make([]error, len(devices))
	for i, d := range devices {
		wg.Add(1)
		go func(i int, d string) {
			defer wg.Done()
			decisions[i], errs[i] = s.TryBindDevice(context.Background(), "1", d, 2)
		}(i, d)
	}
	wg.Wait()

	accepted := 0
	for i := range devices {
		require.NoError(t, errs[i])
		switch decisions[i] {
		case Append:
			accepted++
		case Reject:
		default:
			t.Fatalf("unexpected decision %s for %s", decisions[i], devices[i])
		}
	}
	require.Equal(t, 1, accepted)

	stored := reload(t, db, "1")
	require.Len(t, stored.Devices, 2)
	require.Equal(t, "device-a", stored.Devices[0])
}

func TestTryBindDeviceUnknownKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.TryBindDevice(context.Background(), "missing", "device-a", 1)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestWritesSurviveCallerCancellation(t *testing.T) {
	s, db := newTestStore(t)
	seedLicense(t, db, License{ID: "1", UserKey: "k", MaxDevices: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.TryBindDevice(ctx, "1", "device-a", 1)
	require.NoError(t, err)
	require.Equal(t, Append, got)

	_, applied, err := s.TryActivate(ctx, "1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, applied)
}
