package featureflags

import (
	"context"

	"licensegate/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

// FeatureFlag answers per-identity feature questions. Implementations return
// (true, nil) for features they know nothing about.
type FeatureFlag interface {
	IsEnabled(ctx context.Context, identifier, feature string) (bool, error)
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return Static(nil)
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) IsEnabled(ctx context.Context, identifier, feature string) (bool, error) {
	flags, err := s.client.GetIdentityFlags(identifier, nil)
	if err != nil {
		return true, err
	}

	if _, err := flags.GetFlag(feature); err != nil {
		// unknown feature
		return true, nil
	}

	return flags.IsFeatureEnabled(feature)
}

// Static is a fixed flag set keyed by "identifier/feature".
type Static map[string]bool

func (s Static) IsEnabled(_ context.Context, identifier, feature string) (bool, error) {
	if v, ok := s[identifier+"/"+feature]; ok {
		return v, nil
	}
	return true, nil
}
