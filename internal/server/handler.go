package server

import (
	"net/http"

	"go.uber.org/fx"
)

// HttpHandler is a route of the server. Name is the http.ServeMux
// pattern it is registered under.
type HttpHandler struct {
	Name    string
	Handler http.Handler
}

// HttpHandlerResult adds a handler to the "handlers" group consumed by
// the http server and the lambda emulator.
type HttpHandlerResult struct {
	fx.Out

	Handler *HttpHandler `group:"handlers"`
}

func AsHttpHandler(
	pattern string,
	handler http.Handler,
) HttpHandlerResult {
	return HttpHandlerResult{
		Handler: &HttpHandler{
			Name:    pattern,
			Handler: handler,
		},
	}
}
