package handle

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/util/logging"
)

func Module(config Config) fx.Option {
	return fx.Module(
		"handle",
		// provide handle config
		fx.Supply(config),
		// rename logger for module
		logging.DecorateLogger("handle", zap.Strings("functions", config.Functions)),
		// provide function handler
		fx.Provide(NewLifecycleHandler),
		// invoke function handler
		fx.Invoke(func(*FunctionHandler) {}),
	)
}
