package handle

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/getsentry/sentry-go"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/functions"
	"github.com/pwa-iframe/edgeshim/generator"
)

var ErrMixedFunctions = errors.New("content generator cannot be combined with edge functions")

type FunctionHandlerParams struct {
	fx.In

	Config    Config
	Registry  *functions.Registry
	Generator generator.Config
	Context   context.Context
	Logger    *zap.Logger
}

// FunctionHandler runs the configured functions directly on the Lambda
// runtime, without the http emulator in between.
type FunctionHandler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	handler any
	log     *zap.Logger
}

func NewFunctionHandler(params FunctionHandlerParams) (*FunctionHandler, error) {
	newGenerator := func() (*generator.Generator, error) {
		store, err := generator.NewStore(params.Context, params.Generator)
		if err != nil {
			return nil, err
		}
		return generator.New(store, params.Generator, params.Logger), nil
	}

	handler, err := NewLambdaFunction(params.Config.Functions, params.Registry, newGenerator)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(params.Context)

	return &FunctionHandler{
		ctx:     ctx,
		cancel:  cancel,
		handler: handler,
		log:     params.Logger,
	}, nil
}

func NewLifecycleHandler(params FunctionHandlerParams, lc fx.Lifecycle) (*FunctionHandler, error) {
	handler, err := NewFunctionHandler(params)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			handler.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			handler.Shutdown()
			return nil
		},
	})

	return handler, nil
}

// Start starts the Lambda runtime client in a new goroutine.
func (h *FunctionHandler) Start() {
	h.log.Info("starting function handler")

	go lambda.StartWithOptions(h.handler, lambda.WithContext(h.ctx))
}

// Shutdown cancels the execution of the FunctionHandler.
func (h *FunctionHandler) Shutdown() {
	h.cancel()
}

// NewLambdaFunction returns the Lambda handler function for the named
// functions: the custom resource handler of the content generator, or the
// chain of the named edge functions.
func NewLambdaFunction(
	names []string,
	registry *functions.Registry,
	newGenerator func() (*generator.Generator, error),
) (any, error) {
	if len(names) == 0 {
		return nil, functions.ErrNoFunctions
	}

	if lo.Contains(names, generator.Name) {
		if len(names) > 1 {
			return nil, ErrMixedFunctions
		}

		g, err := newGenerator()
		if err != nil {
			return nil, err
		}

		return g.LambdaHandler(), nil
	}

	h, err := registry.Edge(names...)
	if err != nil {
		return nil, err
	}

	return EdgeFunction(h), nil
}

// EdgeFunction adapts an edge handler to a Lambda handler function. Each
// invocation reports its errors on its own sentry hub.
func EdgeFunction(h edge.Handler) func(context.Context, edge.Event) (any, error) {
	return func(ctx context.Context, event edge.Event) (any, error) {
		hub := sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)

		result, err := h.Handle(ctx, event)
		if err != nil {
			hub.CaptureException(err)
		}

		return result, err
	}
}
