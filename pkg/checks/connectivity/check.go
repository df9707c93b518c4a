// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package connectivity implements the check that classifies how reachable
// configured peers are: directly (PUBLIC), after hole punching (STUN), or
// only through a relay (PROXY). The heavy lifting happens in the natprobe
// package; this check schedules runs, fans out over the configured peers,
// and reports results and metrics.
package connectivity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/plover/internal/logger"
	"github.com/telekom/plover/internal/natprobe"
	"github.com/telekom/plover/pkg/checks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ checks.Check   = (*Connectivity)(nil)
	_ checks.Runtime = (*Config)(nil)
)

const CheckName = "connectivity"

// PeerClassifier produces a connectivity report for a single peer.
// The agent wires in the probing classifier composed at startup.
//
//go:generate go tool moq -out classifier_moq.go . PeerClassifier
type PeerClassifier interface {
	// Classify runs the probing protocol against peer, embedding
	// identifier in every probe message.
	Classify(ctx context.Context, peer natprobe.Address, identifier string) natprobe.Report
}

// Connectivity is a check that classifies the reachability of peers
type Connectivity struct {
	checks.CheckBase
	config     Config
	metrics    metrics
	classifier PeerClassifier
	tracer     trace.Tracer
}

// NewCheck creates a new instance of the connectivity check
func NewCheck(classifier PeerClassifier) checks.Check {
	c := &Connectivity{
		CheckBase: checks.CheckBase{
			Mu:       sync.Mutex{},
			DoneChan: make(chan struct{}, 1),
		},
		config:     Config{},
		classifier: classifier,
		metrics:    newMetrics(),
	}
	c.tracer = otel.Tracer(c.Name())
	return c
}

type result map[string]peerResult

// peerResult is the outcome of classifying one peer.
type peerResult struct {
	// State is the connectivity level the peer was classified into.
	State natprobe.State `json:"state"`
	// Addr is the resolved peer address; empty for PROXY.
	Addr string `json:"addr,omitempty"`
	// Total is the duration of the classification run in seconds.
	Total float64 `json:"total"`
}

// Run starts the connectivity check
func (c *Connectivity) Run(ctx context.Context, cResult chan checks.ResultDTO) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	interval := c.GetConfig().(*Config).Interval

	log.InfoContext(ctx, "Starting connectivity check", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			log.ErrorContext(ctx, "Context canceled", "error", ctx.Err())
			return ctx.Err()
		case <-c.DoneChan:
			log.DebugContext(ctx, "Soft shut down")
			return nil
		case <-time.After(interval):
			res := c.check(ctx)

			cResult <- checks.ResultDTO{
				Name: c.Name(),
				Result: &checks.Result{
					Data:      res,
					Timestamp: time.Now(),
				},
			}
			log.DebugContext(ctx, "Successfully finished connectivity check run")

			// Re-read interval in case config was updated
			interval = c.GetConfig().(*Config).Interval
		}
	}
}

// Shutdown is called once when the check is unregistered or plover shuts down
func (c *Connectivity) Shutdown() {
	c.DoneChan <- struct{}{}
	close(c.DoneChan)
}

// UpdateConfig sets the configuration for the connectivity check
func (c *Connectivity) UpdateConfig(cfg checks.Runtime) error {
	if new, ok := cfg.(*Config); ok {
		c.Mu.Lock()
		defer c.Mu.Unlock()

		for _, peer := range c.config.Peers {
			if !slices.Contains(new.Peers, peer) {
				err := c.metrics.Remove(peer.String())
				if err != nil {
					return err
				}
			}
		}

		c.config = *new
		return nil
	}

	return checks.ErrConfigMismatch{
		Expected: CheckName,
		Current:  cfg.For(),
	}
}

// GetConfig returns a copy of the current configuration of the check
func (c *Connectivity) GetConfig() checks.Runtime {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	configCopy := c.config
	return &configCopy
}

// Name returns the name of the check
func (c *Connectivity) Name() string {
	return CheckName
}

// Schema provides the schema of the data that will be provided
// by the connectivity check
func (c *Connectivity) Schema() (*openapi3.SchemaRef, error) {
	return checks.OpenapiFromPerfData(result{})
}

// GetMetricCollectors returns all metric collectors of check
func (c *Connectivity) GetMetricCollectors() []prometheus.Collector {
	return c.metrics.GetCollectors()
}

// RemoveLabelledMetrics removes the metrics which have the passed
// peer as a label
func (c *Connectivity) RemoveLabelledMetrics(peer string) error {
	return c.metrics.Remove(peer)
}

// check classifies each configured peer in a separate routine and collects
// the per-peer results
func (c *Connectivity) check(ctx context.Context) result {
	log := logger.FromContext(ctx)
	ctx, span := c.tracer.Start(ctx, "connectivity.check")
	defer span.End()

	cfg := c.GetConfig().(*Config)
	if len(cfg.Peers) == 0 {
		log.DebugContext(ctx, "No peers configured for connectivity check")
		return result{}
	}
	log.DebugContext(ctx, "Classifying peers", "amount", len(cfg.Peers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := result{}

	for _, p := range cfg.Peers {
		peer := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			identifier := peer.Identifier
			if identifier == "" {
				identifier = uuid.NewString()
			}

			start := time.Now()
			report := c.classifier.Classify(ctx, peer.Addr(), identifier)
			res := peerResult{
				State: report.State,
				Addr:  report.Addr,
				Total: time.Since(start).Seconds(),
			}

			mu.Lock()
			defer mu.Unlock()
			results[peer.String()] = res
			c.metrics.Set(peer.String(), res)
		}()
	}

	log.DebugContext(ctx, "Waiting for all routines to finish")
	wg.Wait()

	log.DebugContext(ctx, "Successfully classified all peers")
	return results
}
