package lambda

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/handler"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

func Module(config Config) fx.Option {
	return fx.Module(
		"lambda",
		// provide lambda config
		fx.Supply(config),
		// rename logger for module
		logging.DecorateLogger("lambda", zap.Stringer("proxy_source", config.ProxySource)),
		// provide emulator routes
		handler.Module(),
		// provide server
		fx.Provide(NewLifecycleHandler),
		// invoke server
		fx.Invoke(func(*LambdaHandler) {}),
	)
}
