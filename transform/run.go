package transform

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/edge"
)

// Result is the outcome of applying a policy to a response.
type Result struct {
	// Response is the mutated response when the policy applied, and the
	// original, untouched response otherwise.
	Response *edge.Response

	// Applied is true when the policy succeeded.
	Applied bool

	// Err is the reason the policy did not apply.
	Err error
}

// PanicError is returned when a policy panics.
type PanicError struct {
	Policy string
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("policy %s panicked: %v", e.Policy, e.Value)
}

// Run applies the policy to a copy of the response headers. A failing or
// panicking policy never corrupts the response: the original is returned
// unchanged alongside the error.
func Run(p Policy, res *edge.Response) (result Result) {
	if res == nil {
		return Result{Err: edge.ErrMissingResponse}
	}

	mutated := res.Clone()
	if mutated.Headers == nil {
		mutated.Headers = edge.Headers{}
	}

	defer func() {
		if v := recover(); v != nil {
			result = Result{Response: res, Err: &PanicError{Policy: p.Name(), Value: v}}
		}
	}()

	if err := p.Apply(mutated.Headers); err != nil {
		return Result{Response: res, Err: err}
	}

	return Result{Response: mutated, Applied: true}
}

// Handler adapts a policy to an edge handler for response stages.
type Handler struct {
	policy Policy
	log    *zap.Logger
}

func NewHandler(p Policy, log *zap.Logger) *Handler {
	return &Handler{
		policy: p,
		log:    log.With(zap.String("policy", p.Name())),
	}
}

// Handle applies the policy to the event's response. Policy failures are
// logged and reported, and the original response is forwarded; only a
// malformed event is returned as an error.
func (h *Handler) Handle(ctx context.Context, event edge.Event) (any, error) {
	cf, err := event.CF()
	if err != nil {
		return nil, err
	}

	log := h.log.With(
		zap.String("request_id", cf.Config.RequestID),
		zap.Stringer("stage", cf.Config.EventType),
	)

	result := Run(h.policy, cf.Response)
	if result.Response == nil {
		log.Debug("invalid event", zap.Error(result.Err))
		return nil, result.Err
	}

	if !result.Applied {
		log.Error("policy failed, forwarding original response", zap.Error(result.Err))
		captureException(ctx, result.Err)
		return result.Response, nil
	}

	log.Debug("policy applied")

	return result.Response, nil
}

func captureException(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.CaptureException(err)
}
