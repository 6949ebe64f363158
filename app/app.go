package app

import (
	"context"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/functions"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/internal/shell"
	"github.com/pwa-iframe/edgeshim/router"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	config, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	return shell.New(log, Module(config)), nil
}

// Module provides the config and the function runtime shared by every
// command: the registry, the router over the configured topology, and the
// content generator.
func Module(config config.Config) fx.Option {
	return fx.Module(
		"shared",
		// provide global config
		fx.Supply(config),
		// provide function configs
		fx.Supply(functions.Config{
			Transform: config.Transform,
			Gate:      config.Gate,
		}),
		fx.Supply(config.Generator),
		// provide topology
		fx.Supply(router.DefaultTopology(config.Topology)),
		// provide registry
		fx.Provide(functions.NewRegistry),
		// provide router
		fx.Provide(NewRouter),
		// provide content generator
		fx.Provide(NewGenerator),
	)
}

func NewRouter(registry *functions.Registry, topology router.Topology) (*router.Router, error) {
	return registry.Router(topology)
}

// NewGenerator creates the content generator writing to the configured
// store.
func NewGenerator(ctx context.Context, cfg generator.Config, log *zap.Logger) (*generator.Generator, error) {
	store, err := generator.NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return generator.New(store, cfg, log), nil
}
