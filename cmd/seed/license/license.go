package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"licensegate/pkg/config"
	"licensegate/pkg/db"
	"licensegate/pkg/gen"
	"licensegate/pkg/logger"
	"licensegate/pkg/redis"
	"licensegate/pkg/sequence"
	"licensegate/services/activity"
	"licensegate/services/license"
	"licensegate/services/tenant"
)

type SeedOptions struct {
	Owner       string
	Game        string
	Count       int
	MaxDevices  int
	Duration    int
	ModName     string
	Credit      string
	Registrator string
}

func main() {
	if err := newSeedCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	opts := &SeedOptions{
		Game:        "PUBG",
		Count:       10,
		MaxDevices:  1,
		Duration:    24,
		Registrator: "seed",
	}

	cmd := &cobra.Command{
		Use:   "seed-license",
		Short: "Create a tenant and a batch of license keys for local development.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", opts.Owner, "tenant owner name")
	cmd.Flags().StringVar(&opts.Game, "game", opts.Game, "game identifier")
	cmd.Flags().IntVar(&opts.Count, "count", opts.Count, "number of keys")
	cmd.Flags().IntVar(&opts.MaxDevices, "max-devices", opts.MaxDevices, "device ceiling per key")
	cmd.Flags().IntVar(&opts.Duration, "duration", opts.Duration, "key lifetime in hours after activation")
	cmd.Flags().StringVar(&opts.ModName, "mod-name", opts.ModName, "tenant mod name")
	cmd.Flags().StringVar(&opts.Credit, "credit", opts.Credit, "tenant credit text")
	cmd.Flags().StringVar(&opts.Registrator, "registrator", opts.Registrator, "issuing principal recorded on each key")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

type seedParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Redis *goredis.Client `optional:"true"`
}

func run(ctx context.Context, opts *SeedOptions) error {
	var p seedParams

	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		fx.Populate(&p),
		fx.WithLogger(func(_ *zap.Logger) fxevent.Logger { return fxevent.NopLogger }),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return seed(ctx, p, opts)
}

func seed(ctx context.Context, p seedParams, opts *SeedOptions) error {
	owner := slug.Make(opts.Owner)
	if owner == "" {
		return fmt.Errorf("owner %q has no usable characters", opts.Owner)
	}

	if err := p.DB.AutoMigrate(&tenant.Tenant{}, &license.License{}, &activity.History{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	t := tenant.Tenant{
		Owner:   owner,
		Online:  true,
		ModName: opts.ModName,
		Credit:  opts.Credit,
	}
	if err := p.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error; err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	registrator := opts.Registrator
	if p.Redis != nil {
		batch, err := sequence.NewRedisGenerator(p.Redis).NextBatchCode(ctx, owner)
		if err != nil {
			zap.L().Warn("batch code unavailable", zap.Error(err))
		} else {
			registrator = registrator + ":" + batch
		}
	}

	keys := make([]license.License, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		key, err := sequence.LicenseKey()
		if err != nil {
			return err
		}
		keys = append(keys, license.License{
			ID:          p.Node.Generate().String(),
			UserKey:     key,
			Game:        opts.Game,
			Owner:       owner,
			Status:      license.StatusActive,
			Registrator: registrator,
			MaxDevices:  opts.MaxDevices,
			Devices:     datatypes.JSONSlice[string]{},
			Duration:    opts.Duration,
		})
	}

	if len(keys) > 0 {
		if err := p.DB.WithContext(ctx).CreateInBatches(keys, 100).Error; err != nil {
			return fmt.Errorf("create keys: %w", err)
		}
	}

	zap.L().Info("seeded license keys",
		zap.String("owner", owner),
		zap.String("game", opts.Game),
		zap.Int("count", len(keys)),
		zap.String("registrator", registrator),
	)
	for _, k := range keys {
		fmt.Println(k.UserKey)
	}

	return nil
}
