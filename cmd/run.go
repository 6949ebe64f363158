package cmd

import (
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

var (
	runCmdDescription = `The run command detects the execution environment from the
environment variables and starts edgeshim accordingly. This
allows the same binary to be deployed as a function and run
locally, without deciding on a command at buildtime.

If the AWS_LAMBDA_RUNTIME_API environment variable is set
and functions are configured, edgeshim runs them directly,
matching the behaviour of the handle command. Without any
functions it serves the emulator on AWS Lambda, matching the
behaviour of the lambda command.

Otherwise, edgeshim will start the local edge emulator.
	`
	runCmd = &cli.Command{
		Name:        "run",
		Usage:       "Detect execution environment and start edgeshim.",
		Description: runCmdDescription,
		Action:      runAction,
		Flags:       []cli.Flag{},
	}
)

func runAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	if isAWSLambda() {
		if len(cfg.Functions) > 0 {
			log.Info("detected AWS Lambda environment", zap.Strings("functions", cfg.Functions))
			return handleAction(ctx)
		}

		log.Info("detected AWS Lambda environment")
		return lambdaAction(ctx)
	}

	log.Info("detected standalone environment")
	return serveAction(ctx)
}

func isAWSLambda() bool {
	env, ok := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	return ok && env != ""
}

func init() {
	runCmd.Flags = append(runCmd.Flags, serveCmd.Flags...)
	runCmd.Flags = append(runCmd.Flags, lambdaCmd.Flags...)

	rootApp.Commands = append(rootApp.Commands, runCmd)
}
