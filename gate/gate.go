package gate

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pwa-iframe/edgeshim/edge"
)

const (
	// Name is the function name of the viewer-request gate.
	Name = "viewer-request-gate"

	HeaderReferer = "Referer"
)

// Decision is the outcome of evaluating a request.
type Decision int

const (
	Approve Decision = iota
	Deny
)

func (d Decision) String() string {
	switch d {
	case Approve:
		return "approve"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

type Config struct {
	// Enabled turns on the referer allow-list check
	Enabled bool `conf:"enabled"`

	// AllowedReferers lists the hosts (or URLs) allowed to refer requests
	AllowedReferers []string `conf:"allowed_referers"`
}

// Gate decides whether a viewer request may reach the origin.
type Gate struct {
	enabled bool
	allowed map[string]struct{}
}

func New(cfg Config) *Gate {
	allowed := make(map[string]struct{}, len(cfg.AllowedReferers))
	for _, entry := range cfg.AllowedReferers {
		if host := refererHost(entry); host != "" {
			allowed[host] = struct{}{}
		}
	}

	return &Gate{
		enabled: cfg.Enabled,
		allowed: allowed,
	}
}

// Evaluate returns Approve for every request while the gate is disabled.
// An enabled gate approves requests whose referer host is allow-listed.
func (g *Gate) Evaluate(req *edge.Request) Decision {
	if !g.enabled {
		return Approve
	}

	if req == nil {
		return Deny
	}

	referer, ok := req.Headers.Get(HeaderReferer)
	if !ok {
		return Deny
	}

	if _, ok := g.allowed[refererHost(referer)]; ok {
		return Approve
	}

	return Deny
}

// refererHost extracts the lowercase host of a referer value, which may
// be either a URL or a bare host.
func refererHost(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}

// Handler adapts the gate to an edge handler for request stages.
type Handler struct {
	gate *Gate
	log  *zap.Logger
}

func NewHandler(g *Gate, log *zap.Logger) *Handler {
	return &Handler{
		gate: g,
		log:  log.With(zap.String("function", Name)),
	}
}

// Handle returns the request unchanged when approved, and a generated
// 403 response when denied.
func (h *Handler) Handle(ctx context.Context, event edge.Event) (any, error) {
	cf, err := event.CF()
	if err != nil {
		return nil, err
	}

	if cf.Request == nil {
		return nil, edge.ErrMissingRequest
	}

	decision := h.gate.Evaluate(cf.Request)

	h.log.Debug("evaluated request",
		zap.String("request_id", cf.Config.RequestID),
		zap.String("uri", cf.Request.URI),
		zap.Stringer("decision", decision),
	)

	if decision == Deny {
		return forbidden(), nil
	}

	return cf.Request, nil
}

func forbidden() *edge.Response {
	headers := edge.Headers{}
	headers.Set("Content-Type", "text/plain")
	headers.Set("Cache-Control", "no-store")

	return &edge.Response{
		Status:            "403",
		StatusDescription: "Forbidden",
		Headers:           headers,
		Body:              "forbidden",
	}
}
