// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/internal/natprobe"
	"github.com/telekom/plover/internal/signaling"
	"github.com/telekom/plover/internal/udpserver"
	"github.com/telekom/plover/pkg/api"
	"github.com/telekom/plover/pkg/checks/runtime"
	"github.com/telekom/plover/pkg/config"
	"github.com/telekom/plover/pkg/db"
	"github.com/telekom/plover/pkg/factory"
	"github.com/telekom/plover/pkg/plover/metrics"
)

const shutdownTimeout = time.Second * 90

// Plover is the main struct of the plover application
type Plover struct {
	// config is the startup configuration of the plover
	config *config.Config
	// db is the database used to store the check results
	db db.DB
	// api is the plover's API
	api api.API
	// loader is used to load the runtime configuration
	loader config.Loader
	// probe is the UDP listener probes are sent and received on
	probe *udpserver.Server
	// signal is the connection to the signaling relay, nil if none is configured
	signal *signaling.Client
	// metrics is used to collect metrics
	metrics metrics.Provider
	// controller is used to manage the checks
	controller *ChecksController
	// cRuntime is used to signal that the runtime configuration has changed
	cRuntime chan runtime.Config
	// cErr is used to handle non-recoverable errors of the plover components
	cErr chan error
	// cDone is used to signal that the plover was shut down because of an error
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates a new plover from a given configfile
func New(cfg *config.Config) *Plover {
	m := metrics.New(cfg.Telemetry)
	dbase := db.NewInMemory()

	correlator := natprobe.NewCorrelator()
	probe := udpserver.New(cfg.Probe, func(source natprobe.Address, message string) {
		correlator.Dispatch(source, message)
	})

	var signal natprobe.Signaler = disabledSignaler{}
	var client *signaling.Client
	if cfg.HasSignaling() {
		client = signaling.NewClient(cfg.Signaling)
		signal = client
	}

	timing := cfg.Probing
	if timing == (natprobe.Timing{}) {
		timing = natprobe.DefaultTiming()
	}
	classifier := natprobe.NewClassifier(natprobe.NewProber(probe, signal, correlator), timing)

	plover := &Plover{
		config:  cfg,
		db:      dbase,
		api:     api.New(cfg.Api),
		probe:   probe,
		signal:  client,
		metrics: m,
		controller: NewChecksController(dbase, m, factory.Options{
			Classifier: classifier,
		}),
		cRuntime: make(chan runtime.Config, 1),
		cErr:     make(chan error, 1),
		cDone:    make(chan struct{}, 1),
		shutOnce: sync.Once{},
	}
	plover.loader = config.NewLoader(cfg, plover.cRuntime)

	return plover
}

// Run starts the plover
func (p *Plover) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	err := p.metrics.InitTracing(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err = metrics.RegisterInstanceInfo(p.metrics.GetRegistry(), p.config.PloverName, map[string]string{
		"team_name":  p.config.Metadata.Team.Name,
		"team_email": p.config.Metadata.Team.Email,
		"platform":   p.config.Metadata.Platform,
	}); err != nil {
		log.Warn("Failed to register instance info metric", "error", err)
	}

	// The probe listener must be up before any check runs; a failed bind
	// is the only fatal startup error of the probing stack.
	if err = p.probe.Listen(ctx); err != nil {
		return fmt.Errorf("failed to start probe listener: %w", err)
	}

	go func() {
		p.cErr <- p.probe.Run(ctx)
	}()
	go func() {
		p.cErr <- p.loader.Run(ctx)
	}()
	go func() {
		p.cErr <- p.startupAPI(ctx)
	}()
	go func() {
		p.cErr <- p.controller.Run(ctx)
	}()

	for {
		select {
		case cfg := <-p.cRuntime:
			p.controller.Reconcile(ctx, cfg)
		case <-ctx.Done():
			p.shutdown(ctx)
		case err := <-p.cErr:
			if err != nil {
				log.Error("Non-recoverable error in plover component", "error", err)
				p.shutdown(ctx)
			}
		case <-p.cDone:
			log.InfoContext(ctx, "Plover was shut down")
			return ErrFinalShutdown
		}
	}
}

// shutdown shuts down the plover and all managed components gracefully.
// It returns an error if one is present in the context or if any of the
// components fail to shut down.
func (p *Plover) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	p.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down plover")
		var sErrs ErrShutdown
		sErrs.errAPI = p.api.Shutdown(ctx)
		sErrs.errMetrics = p.metrics.Shutdown(ctx)
		if p.signal != nil {
			sErrs.errSignal = p.signal.Close()
		}
		p.probe.Shutdown(ctx)
		p.loader.Shutdown(ctx)
		p.controller.Shutdown(ctx)

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "errors", sErrs)
		}

		// Signal that shutdown is complete
		p.cDone <- struct{}{}
	})
}

// disabledSignaler is used when no signaling relay is configured.
// Echo requests fail and the affected rounds fall through to their
// timeout, so peers come out as PROXY at worst.
type disabledSignaler struct{}

func (disabledSignaler) SendNatPacket(context.Context, natprobe.Address, natprobe.Address, string) error {
	return errors.New("no signaling relay configured")
}
