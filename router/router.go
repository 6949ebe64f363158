package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/edge"
)

var ErrUnknownFunction = errors.New("unknown function")

// Router dispatches edge events to the functions a distribution associates
// with the event's stage.
type Router struct {
	topology Topology
	handlers map[string]edge.Handler
	log      *zap.Logger
}

// New validates the topology and checks that every function it references
// has a handler.
func New(t Topology, handlers map[string]edge.Handler, log *zap.Logger) (*Router, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	missing := lo.Filter(t.FunctionNames(), func(name string, _ int) bool {
		_, ok := handlers[name]
		return !ok
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFunction, missing)
	}

	return &Router{
		topology: t,
		handlers: handlers,
		log:      log,
	}, nil
}

// Dispatch runs the functions the distribution associates with the stage
// of the event. Without associated functions the request or response
// passes through unchanged.
func (r *Router) Dispatch(ctx context.Context, distribution string, event edge.Event) (any, error) {
	d, ok := r.topology.Distribution(distribution)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDistribution, distribution)
	}

	stage, err := event.Stage()
	if err != nil {
		return nil, err
	}

	names := d.Functions(stage)

	r.log.Debug("dispatching event",
		zap.String("distribution", d.Name),
		zap.Stringer("stage", stage),
		zap.Strings("functions", names),
	)

	handlers := lo.Map(names, func(name string, _ int) edge.Handler {
		return r.handlers[name]
	})

	return edge.Chain(handlers...).Handle(ctx, event)
}
