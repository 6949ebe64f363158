package handler

import (
	"net/http"

	"github.com/pwa-iframe/edgeshim/internal/server"
)

func NewDistributionRoute(handler *EmulatorHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("POST /distributions/{distribution}", http.HandlerFunc(handler.Distribution))
}

func NewFunctionRoute(handler *EmulatorHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("POST /functions/{function}", http.HandlerFunc(handler.Function))
}

func NewContentRoute(handler *EmulatorHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("POST /resources/content", http.HandlerFunc(handler.Content))
}

func NewHealthRoute() server.HttpHandlerResult {
	return server.AsHttpHandler("GET /health", http.HandlerFunc(HealthHandler))
}
