package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/internal/shell"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

var (
	appName  = "edgeshim"
	appUsage = `Edge functions, content generator and provisioning for
serving a website framed inside a progressive web app.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Args:            true,
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.PathFlag{
				Name:    "config",
				Usage:   "the config file to load. Files ending in .env are read as dotenv, others as JSON.",
				EnvVars: []string{"EDGESHIM_CONFIG"},
			},
			// function flags
			&cli.StringSliceFlag{
				Name:     "function",
				Usage:    "the function to run, may be repeated to chain edge functions.",
				Aliases:  []string{"f"},
				Category: "function",
				EnvVars:  []string{"EDGESHIM_FUNCTIONS"},
			},
			&cli.StringFlag{
				Name:     "ancestor-host",
				Usage:    "the host allowed to frame responses with a content security policy.",
				Category: "function",
				EnvVars:  []string{"EDGESHIM_TRANSFORM__ANCESTOR_HOST"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// log config errors with the levels given on the cli
			bootLog, err := createLogger(ctx.String("log-level"), ctx.String("log-format"))
			if err != nil {
				return err
			}

			// parse config using defaults, the config file, env and flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Cli:       ctx,
				CliMap:    cliConfigMap,
				Defaults:  config.DefaultConfig,
				EnvPrefix: envPrefix,
				FileName:  ctx.Path("config"),
				Log:       bootLog,
			})
			_ = bootLog.Sync()
			if err != nil {
				return err
			}

			// create the logger from the parsed config
			log, err := createLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			// inject logger and config into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			// Before may have failed ahead of creating the logger
			_ = logging.LoggerFromContextOrNop(ctx.Context).Sync()

			return nil
		},
	}
)

const envPrefix = "EDGESHIM_"

// cliConfigMap maps root flags to their config keys.
var cliConfigMap = map[string]string{
	"function":      "functions",
	"ancestor-host": "transform.ancestor_host",
}

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

func Execute(params ExecuteParams) {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	run(context.Background(), os.Args)
}

func run(ctx context.Context, args []string) {
	err := rootApp.RunContext(ctx, args)

	// if app exited without error, return
	if err == nil {
		return
	}

	// a clean shutdown with a non-zero signal code carries no cause
	var exitErr *shell.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		fmt.Fprintf(os.Stderr, "exit error: %s\n", err.Error())
	}

	// exit with the code of an ExitError, 1 otherwise
	os.Exit(shell.ExitCode(err))
}

// createLogger builds the app logger. Unknown levels fall back to info,
// formats other than development to production.
func createLogger(level, format string) (*zap.Logger, error) {
	var config zap.Config
	if format == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.InitialFields = map[string]any{
		"app": appName,
	}

	if atom, err := zap.ParseAtomicLevel(level); err == nil {
		config.Level = atom
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return config.Build()
}
