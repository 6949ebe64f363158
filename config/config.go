package config

import (
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/router"
	"github.com/pwa-iframe/edgeshim/transform"
	"github.com/pwa-iframe/edgeshim/util/conf"
)

// FileName is the name of the config file packaged next to the binary in
// edge function bundles.
const FileName = "edgeshim.json"

type AuthConfig struct {
	// Key is the api key required by the emulator routes, if set
	Key string `conf:"key"`
}

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Functions are the functions run by the handle command. Several edge
	// functions run in the given order.
	Functions []string `conf:"functions"`

	// Auth protects the emulator routes
	Auth AuthConfig `conf:"auth"`

	Transform transform.Config `conf:"transform"`

	Gate gate.Config `conf:"gate"`

	Generator generator.Config `conf:"generator"`

	// Topology shapes the distributions served by the emulator and
	// provisioned by synth
	Topology router.TopologyOptions `conf:"topology"`
}

var DefaultConfig = conf.Merge(
	conf.DefaultConfig{
		"log_level":  "info",
		"log_format": "production",
	},
	conf.MergeDefaults("transform", conf.DefaultConfig{
		"frame_options_value":    transform.DefaultFrameOptions,
		"redirect_marker_header": transform.DefaultRedirectMarkerHeader,
	}),
	conf.MergeDefaults("generator", conf.DefaultConfig{
		"object_key":   generator.DefaultObjectKey,
		"content_type": generator.DefaultContentType,
		"title":        generator.DefaultTitle,
	}),
)
