package standalone

import (
	"github.com/pwa-iframe/edgeshim/internal/server"
	"github.com/pwa-iframe/edgeshim/util/conf"
)

type Config struct {
	// HttpConfig represents the configuration for the emulator's HTTP
	// server.
	HttpConfig server.HttpConfig `conf:",squash"`
}

var DefaultConfig = conf.DefaultConfig{
	"host": "localhost",
	"port": 8080,
	"h2c":  false,
}
