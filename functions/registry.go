package functions

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/gate"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/router"
	"github.com/pwa-iframe/edgeshim/transform"
)

var (
	ErrUnknownFunction  = errors.New("unknown function")
	ErrNoFunctions      = errors.New("no functions")
	ErrUnsupportedStage = errors.New("function does not support stage")
)

// EdgeNames lists the functions that run on CloudFront events.
var EdgeNames = append(append([]string{}, transform.Names...), gate.Name)

// Names lists every function the binary can run.
var Names = append(append([]string{}, EdgeNames...), generator.Name)

// IsEdge reports whether name is an edge function.
func IsEdge(name string) bool {
	return lo.Contains(EdgeNames, name)
}

// Supports reports whether the named edge function can run on the stage.
// Header transforms work on responses, the gate on requests.
func Supports(name string, stage edge.Stage) bool {
	switch {
	case transform.IsPolicy(name):
		return stage.IsResponse()
	case name == gate.Name:
		return stage.IsRequest()
	}

	return false
}

type Config struct {
	Transform transform.Config
	Gate      gate.Config
}

// Registry builds edge handlers by function name.
type Registry struct {
	cfg Config
	log *zap.Logger
}

func NewRegistry(cfg Config, log *zap.Logger) *Registry {
	return &Registry{
		cfg: cfg,
		log: log,
	}
}

// Handler returns the handler of the named edge function.
func (r *Registry) Handler(name string) (edge.Handler, error) {
	if name == gate.Name {
		return gate.NewHandler(gate.New(r.cfg.Gate), r.log), nil
	}

	policy, err := transform.NewPolicy(name, r.cfg.Transform)
	if errors.Is(err, transform.ErrUnknownPolicy) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	} else if err != nil {
		return nil, err
	}

	return transform.NewHandler(policy, r.log), nil
}

// Edge returns a handler running the named edge functions in order.
func (r *Registry) Edge(names ...string) (edge.Handler, error) {
	if len(names) == 0 {
		return nil, ErrNoFunctions
	}

	handlers := make([]edge.Handler, 0, len(names))
	for _, name := range names {
		h, err := r.Handler(name)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	if len(handlers) == 1 {
		return handlers[0], nil
	}

	return edge.Chain(handlers...), nil
}

// Router returns a router over the topology with a handler for every
// function it references.
func (r *Registry) Router(t router.Topology) (*router.Router, error) {
	if err := CheckTopology(t); err != nil {
		return nil, err
	}

	handlers := make(map[string]edge.Handler)
	for _, name := range t.FunctionNames() {
		h, err := r.Handler(name)
		if err != nil {
			return nil, err
		}
		handlers[name] = h
	}

	return router.New(t, handlers, r.log)
}

// CheckTopology verifies that every function of the topology is an edge
// function attached to a stage it supports.
func CheckTopology(t router.Topology) error {
	for _, d := range t.Distributions {
		for _, a := range d.Associations {
			for _, name := range a.Functions {
				if !IsEdge(name) {
					return fmt.Errorf("%w: distribution %q: %s", ErrUnknownFunction, d.Name, name)
				}
				if !Supports(name, a.Stage) {
					return fmt.Errorf("%w: distribution %q: %s on %s", ErrUnsupportedStage, d.Name, name, a.Stage)
				}
			}
		}
	}

	return nil
}
