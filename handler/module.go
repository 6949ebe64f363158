package handler

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("handler",
		fx.Provide(NewEmulatorHandler),
		fx.Provide(NewDistributionRoute),
		fx.Provide(NewFunctionRoute),
		fx.Provide(NewContentRoute),
		fx.Provide(NewHealthRoute),
	)
}
