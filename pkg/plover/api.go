// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/pkg/api"
	"gopkg.in/yaml.v3"
)

const urlParamCheckName = "check"

// startupAPI registers the plover's routes and serves the API
func (p *Plover) startupAPI(ctx context.Context) error {
	routes := []api.Route{
		{
			Path: "/openapi", Method: http.MethodGet,
			Handler: p.handleOpenAPI,
		},
		{
			Path: "/v1/checks/{check}", Method: http.MethodGet,
			Handler: p.handleCheckResult,
		},
		{
			Path: "/metrics", Method: "Handle",
			Handler: promhttp.HandlerFor(
				p.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: p.metrics.GetRegistry()},
			).ServeHTTP,
		},
	}

	if err := p.api.RegisterRoutes(ctx, routes...); err != nil {
		return err
	}
	return p.api.Run(ctx)
}

// handleOpenAPI serves the OpenAPI specification of the check results.
// The response defaults to YAML; JSON is served when requested via the
// Accept header.
func (p *Plover) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	oapi, err := p.controller.GenerateCheckSpecs(ctx)
	if err != nil {
		log.Error("Failed to create openapi spec", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var marshal func(any) ([]byte, error)
	switch r.Header.Get("Accept") {
	case "application/json":
		w.Header().Set("Content-Type", "application/json")
		marshal = json.Marshal
	default:
		w.Header().Set("Content-Type", "text/yaml")
		marshal = yaml.Marshal
	}

	body, err := marshal(oapi)
	if err != nil {
		log.Error("Failed to marshal openapi spec", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if _, err := w.Write(body); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// handleCheckResult serves the latest result of the requested check
func (p *Plover) handleCheckResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	name := chi.URLParam(r, urlParamCheckName)
	result, ok := p.db.Get(name)
	if !ok {
		http.Error(w, "Check not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error("Failed to encode check result", "check", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
