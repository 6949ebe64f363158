package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

func TestCreateLogger(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		info  bool
	}{
		{"debug", true, true},
		{"warn", false, false},
		{"", false, true},
		{"nonsense", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := createLogger(tt.level, "production")
			require.NoError(t, err)

			assert.Equal(t, tt.debug, log.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.info, log.Core().Enabled(zap.InfoLevel))
		})
	}
}

func TestBefore_LoggerFromConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(file, []byte(`{
		"log_level": "debug",
		"log_format": "development",
		"functions": ["strip-frame-options"]
	}`), 0o644))

	var (
		log *zap.Logger
		cfg config.Config
	)

	app := &cli.App{
		Name:   appName,
		Flags:  rootApp.Flags,
		Before: rootApp.Before,
		Action: func(ctx *cli.Context) error {
			var err error
			if log, err = logging.LoggerFromContext(ctx.Context); err != nil {
				return err
			}
			cfg, err = conf.GetConfigFromContext[config.Config](ctx.Context)
			return err
		},
	}

	require.NoError(t, app.RunContext(context.Background(), []string{appName, "--config", file}))

	assert.True(t, log.Core().Enabled(zap.DebugLevel))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"strip-frame-options"}, cfg.Functions)
}
