// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"context"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/checks/runtime"
	"github.com/telekom/plover/pkg/db"
	"github.com/telekom/plover/pkg/factory"
	"github.com/telekom/plover/pkg/plover/metrics"
)

// ChecksController manages the lifecycle of the configured checks and
// funnels their results into the database
type ChecksController struct {
	db      db.DB
	metrics metrics.Provider
	opts    factory.Options
	checks  runtime.Checks
	cResult chan checks.ResultDTO
	cErr    chan error
	done    chan struct{}
}

// NewChecksController creates a new ChecksController
func NewChecksController(dbase db.DB, m metrics.Provider, opts factory.Options) *ChecksController {
	return &ChecksController{
		db:      dbase,
		metrics: m,
		opts:    opts,
		checks:  runtime.Checks{},
		cResult: make(chan checks.ResultDTO, 8),
		cErr:    make(chan error, 1),
		done:    make(chan struct{}, 1),
	}
}

// Run runs the controller loop.
// It saves check results and handles failing checks.
func (cc *ChecksController) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	for {
		select {
		case result := <-cc.cResult:
			cc.db.Save(result)
		case err := <-cc.cErr:
			var runErr *ErrRunningCheck
			if errors.As(err, &runErr) {
				cc.UnregisterCheck(ctx, runErr.Check)
			}
			log.ErrorContext(ctx, "Error while running check", "error", err)
		case <-ctx.Done():
			return ctx.Err()
		case <-cc.done:
			return nil
		}
	}
}

// Shutdown stops the controller and all registered checks
func (cc *ChecksController) Shutdown(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info("Shutting down checks controller")

	for c := range cc.checks.Iter() {
		cc.UnregisterCheck(ctx, c)
	}

	select {
	case cc.done <- struct{}{}:
	default:
	}
}

// Reconcile synchronizes the registered checks with the given runtime
// configuration. New checks are started, changed checks are updated and
// removed checks are shut down.
func (cc *ChecksController) Reconcile(ctx context.Context, cfg runtime.Config) {
	log := logger.FromContext(ctx)

	newChecks, err := factory.NewChecksFromConfig(cfg, cc.opts)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create checks from config", "error", err)
		return
	}

	// Update existing checks and shut down the removed ones
	for c := range cc.checks.Iter() {
		if _, ok := newChecks[c.Name()]; !ok {
			cc.UnregisterCheck(ctx, c)
			continue
		}

		delete(newChecks, c.Name())
		if err := c.UpdateConfig(cfg.For(c.Name())); err != nil {
			log.ErrorContext(ctx, "Failed to update check config", "check", c.Name(), "error", err)
		}
	}

	// The remainder are new checks
	for _, c := range newChecks {
		cc.RegisterCheck(ctx, c)
	}
}

// RegisterCheck registers the check's metrics and starts it
func (cc *ChecksController) RegisterCheck(ctx context.Context, check checks.Check) {
	log := logger.FromContext(ctx).With("check", check.Name())
	log.InfoContext(ctx, "Registering new check")

	for _, collector := range check.GetMetricCollectors() {
		if err := cc.metrics.GetRegistry().Register(collector); err != nil {
			log.ErrorContext(ctx, "Failed to register metric collector", "error", err)
		}
	}

	go func() {
		if err := check.Run(ctx, cc.cResult); err != nil {
			log.ErrorContext(ctx, "Failed to run check", "error", err)
			cc.cErr <- &ErrRunningCheck{Check: check, Err: err}
		}
	}()

	cc.checks.Add(check)
}

// UnregisterCheck shuts the check down and removes its metrics
func (cc *ChecksController) UnregisterCheck(ctx context.Context, check checks.Check) {
	log := logger.FromContext(ctx).With("check", check.Name())
	log.InfoContext(ctx, "Unregistering check")

	for _, collector := range check.GetMetricCollectors() {
		cc.metrics.GetRegistry().Unregister(collector)
	}

	check.Shutdown()
	cc.checks.Delete(check)
}

var oapiBoilerplate = openapi3.T{
	OpenAPI: "3.0.0",
	Info: &openapi3.Info{
		Title:       "Plover Metrics API",
		Description: "Serves metrics collected by plovers checks",
		Contact: &openapi3.Contact{
			URL:   "https://github.com/telekom/plover",
			Email: "opensource@telekom.de",
			Name:  "Deutsche Telekom IT GmbH",
		},
	},
	Paths:      &openapi3.Paths{},
	Extensions: make(map[string]any),
	Components: &openapi3.Components{
		Schemas: make(openapi3.Schemas),
	},
	Servers: openapi3.Servers{},
}

// GenerateCheckSpecs generates the OpenAPI specifications of the results
// served for the registered checks
func (cc *ChecksController) GenerateCheckSpecs(ctx context.Context) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := oapiBoilerplate

	for c := range cc.checks.Iter() {
		name := c.Name()
		ref, err := c.Schema()
		if err != nil {
			log.Error("Failed to get schema for check", "check", name, "error", err)
			return openapi3.T{}, &ErrCreateOpenapiSchema{name: name, err: err}
		}

		routeDesc := "Returns the latest result of the " + name + " check"
		bodyDesc := "Metrics of the " + name + " check"
		doc.Paths.Set("/v1/checks/"+name, &openapi3.PathItem{
			Description: routeDesc,
			Get: &openapi3.Operation{
				Description: routeDesc,
				Tags:        []string{"Checks", name},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(200, &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription(bodyDesc).
							WithJSONSchemaRef(ref),
					}),
				),
			},
		})
	}

	return doc, nil
}
