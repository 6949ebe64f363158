package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/config"
	"github.com/pwa-iframe/edgeshim/edge"
	"github.com/pwa-iframe/edgeshim/functions"
	"github.com/pwa-iframe/edgeshim/generator"
	"github.com/pwa-iframe/edgeshim/router"
)

// Dispatcher runs the functions of a distribution on an event.
type Dispatcher interface {
	Dispatch(ctx context.Context, distribution string, event edge.Event) (any, error)
}

// FunctionSource builds edge handlers by function name.
type FunctionSource interface {
	Edge(names ...string) (edge.Handler, error)
}

// ResourceHandler handles custom resource events.
type ResourceHandler interface {
	HandleEvent(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error)
}

type EmulatorHandlerParams struct {
	fx.In

	Router    *router.Router
	Registry  *functions.Registry
	Generator *generator.Generator
	Config    config.Config
	Log       *zap.Logger
}

// EmulatorHandler serves the emulator routes. Edge events are posted in
// the shape CloudFront sends them to Lambda@Edge, and answered with what
// the function would return to CloudFront.
type EmulatorHandler struct {
	router    Dispatcher
	functions FunctionSource
	resources ResourceHandler
	config    config.Config
	log       *zap.Logger
}

func NewEmulatorHandler(params EmulatorHandlerParams) *EmulatorHandler {
	return &EmulatorHandler{
		router:    params.Router,
		functions: params.Registry,
		resources: params.Generator,
		config:    params.Config,
		log:       params.Log,
	}
}

// Distribution handles POST /distributions/{distribution}.
func (h *EmulatorHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r).With(zap.String("distribution", r.PathValue("distribution")))

	if !h.authorize(w, r, log) {
		return
	}

	var event edge.Event
	if !decode(w, r, &event, log) {
		return
	}

	result, err := h.router.Dispatch(r.Context(), r.PathValue("distribution"), event)
	if err != nil {
		writeError(w, err, log)
		return
	}

	writeJSON(w, http.StatusOK, result, log)
}

// Function handles POST /functions/{function}. A comma separated list of
// functions is run in order.
func (h *EmulatorHandler) Function(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r).With(zap.String("function", r.PathValue("function")))

	if !h.authorize(w, r, log) {
		return
	}

	var event edge.Event
	if !decode(w, r, &event, log) {
		return
	}

	fn, err := h.functions.Edge(splitNames(r.PathValue("function"))...)
	if err != nil {
		writeError(w, err, log)
		return
	}

	result, err := fn.Handle(r.Context(), event)
	if err != nil {
		writeError(w, err, log)
		return
	}

	writeJSON(w, http.StatusOK, result, log)
}

// Content handles POST /resources/content. The body is a custom resource
// event, the answer the report CloudFormation would receive.
func (h *EmulatorHandler) Content(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r)

	if !h.authorize(w, r, log) {
		return
	}

	var event cfn.Event
	if !decode(w, r, &event, log) {
		return
	}

	report := cfn.NewResponse(&event)

	physicalID, data, err := h.resources.HandleEvent(r.Context(), event)
	report.PhysicalResourceID = physicalID
	report.Data = data

	status := http.StatusOK
	if err != nil {
		log.Debug("content resource failed", zap.Error(err))
		report.Status = cfn.StatusFailed
		report.Reason = err.Error()
		if errors.Is(err, generator.ErrMissingProperty) || errors.Is(err, generator.ErrInvalidProperty) {
			status = http.StatusBadRequest
		} else {
			status = http.StatusInternalServerError
		}
	} else {
		report.Status = cfn.StatusSuccess
	}

	writeJSON(w, status, report, log)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *EmulatorHandler) requestLog(r *http.Request) *zap.Logger {
	return h.log.With(
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

func (h *EmulatorHandler) authorize(w http.ResponseWriter, r *http.Request, log *zap.Logger) bool {
	if h.config.Auth.Key != "" && r.Header.Get("api-key") != h.config.Auth.Key {
		log.Debug("unauthorized request")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}

	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any, log *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug("failed to decode body", zap.Error(err))
		http.Error(w, "failed to decode body", http.StatusBadRequest)
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, err error, log *zap.Logger) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, router.ErrUnknownDistribution),
		errors.Is(err, functions.ErrUnknownFunction):
		status = http.StatusNotFound
	case errors.Is(err, edge.ErrNoRecords),
		errors.Is(err, edge.ErrMissingRequest),
		errors.Is(err, edge.ErrMissingResponse),
		errors.Is(err, edge.ErrUnknownStage),
		errors.Is(err, functions.ErrNoFunctions):
		status = http.StatusBadRequest
	}

	log.Debug("request failed", zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *zap.Logger) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to encode response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		log.Debug("failed to write response", zap.Error(err))
	}
}

func splitNames(s string) []string {
	names := lo.Map(strings.Split(s, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})

	return lo.Compact(names)
}
