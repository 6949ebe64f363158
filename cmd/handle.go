package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pwa-iframe/edgeshim/app"
	"github.com/pwa-iframe/edgeshim/app/handle"
	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

var (
	handleCmdDescription = `The handle command starts an AWS Lambda runtime interface
client that runs the configured functions directly on the
Lambda events. This is the entrypoint of packaged functions.

Edge functions receive CloudFront events and run in the
order given, e.g.

  edgeshim --function strip-frame-options handle

The content-generator function receives CloudFormation custom
resource events and reports to CloudFormation. It cannot be
combined with edge functions.

The command blocks indefinitely, processing incoming events.`
	handleCmd = &cli.Command{
		Name:        "handle",
		Usage:       "Run the configured functions on the AWS Lambda runtime",
		Description: handleCmdDescription,
		Action:      handleAction,
	}
)

func handleAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	log.Info("starting AWS Lambda function handler")

	return app.Run(ctx.Context, handle.Module(handle.Config{
		Functions: cfg.Functions,
	}))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, handleCmd)
}
