package standalone

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/handler"
	"github.com/pwa-iframe/edgeshim/internal/server"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

// Module runs the edge emulator on a local http server.
func Module(config Config) fx.Option {
	return fx.Module(
		"serve",
		// rename logger for module
		logging.DecorateLogger("serve", zap.String("address", config.HttpConfig.Address())),
		// provide emulator routes
		handler.Module(),
		// provide server
		server.Module(config.HttpConfig),
	)
}
