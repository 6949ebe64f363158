package cmd

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/infra"
	"github.com/pwa-iframe/edgeshim/router"
	"github.com/pwa-iframe/edgeshim/util/conf"
	"github.com/pwa-iframe/edgeshim/util/logging"
)

var (
	synthCmdDescription = `The synth command declares the CloudFormation stack of the
configured topology and synthesizes it into the cloud
assembly directory. It is meant to be run by the cdk cli,
see cdk.json.

The linux build of edgeshim must be present in the asset
directory. It is packaged, together with a bootstrap script
and the function config, into one bundle per edge function
and into the content generator function.

The account and region are read from CDK_DEPLOY_ACCOUNT and
CDK_DEPLOY_REGION, falling back to the cdk cli defaults and
to us-east-1.`
	synthCmd = &cli.Command{
		Name:        "synth",
		Usage:       "Synthesize the CloudFormation stack.",
		Description: synthCmdDescription,
		Action:      synthAction,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "asset-dir",
				Usage:    "the directory holding the linux build of edgeshim.",
				Category: "synth",
				EnvVars:  []string{"EDGESHIM_ASSET_DIR"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "binary-name",
				Usage:    "the name of the binary in the asset directory.",
				Value:    infra.DefaultBinaryName,
				Category: "synth",
			},
			&cli.PathFlag{
				Name:     "stage-dir",
				Usage:    "the directory function bundles are staged in. Defaults to a temporary directory.",
				Category: "synth",
			},
			&cli.StringSliceFlag{
				Name:     "site-dir",
				Usage:    "a bucket=dir pair, deploying the contents of dir into the bucket.",
				Category: "synth",
			},
			&cli.StringFlag{
				Name:     "stack-name",
				Usage:    "the id of the stack.",
				Value:    "EdgeshimStack",
				Category: "synth",
			},
			&cli.StringFlag{
				Name:     "update",
				Usage:    "the update token of the page content. Changing it rewrites the page. Defaults to the synth time.",
				Category: "synth",
			},
			&cli.BoolFlag{
				Name:     "disable-logging",
				Usage:    "disable standard logging on every distribution.",
				Category: "synth",
			},
			&cli.PathFlag{
				Name:     "outdir",
				Usage:    "the cloud assembly directory. Set by the cdk cli.",
				Category: "synth",
			},
		},
	}
)

func synthAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	siteDirs, err := infra.ParseSiteDirs(ctx.StringSlice("site-dir"))
	if err != nil {
		return err
	}

	environment, err := infra.EnvironmentFromEnv()
	if err != nil {
		return err
	}

	var appProps *awscdk.AppProps
	if outdir := ctx.Path("outdir"); outdir != "" {
		appProps = &awscdk.AppProps{Outdir: jsii.String(outdir)}
	}

	app := awscdk.NewApp(appProps)

	stack, err := infra.NewFrameStack(app, ctx.String("stack-name"), &infra.StackProps{
		StackProps: awscdk.StackProps{
			Env: environment,
		},
		AssetDir:       ctx.Path("asset-dir"),
		BinaryName:     ctx.String("binary-name"),
		StageDir:       ctx.Path("stage-dir"),
		Topology:       router.DefaultTopology(cfg.Topology),
		SiteDirs:       siteDirs,
		Transform:      cfg.Transform,
		Gate:           cfg.Gate,
		Generator:      cfg.Generator,
		Update:         ctx.String("update"),
		DisableLogging: ctx.Bool("disable-logging"),
	})
	if err != nil {
		return err
	}

	assembly := app.Synth(nil)

	log.Info("synthesized stack",
		zap.String("stack", *stack.StackName()),
		zap.String("directory", *assembly.Directory()),
		zap.Int("distributions", len(stack.Distributions)),
		zap.Int("edge_functions", len(stack.EdgeFunctions)),
	)

	return nil
}

func init() {
	rootApp.Commands = append(rootApp.Commands, synthCmd)
}
