// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package framework contains the end-to-end test framework.
// It starts a fully wired plover instance and asserts on its HTTP API.
package framework

import (
	"context"
	"testing"
	"time"

	"github.com/telekom/plover/pkg/config"
	"github.com/telekom/plover/pkg/plover"
)

// Runner runs a test scenario.
type Runner interface {
	// Run runs the test scenario.
	Run(ctx context.Context) error
}

// Framework creates test scenarios bound to a [testing.T].
type Framework struct {
	t *testing.T
}

// New creates a new framework.
func New(t *testing.T) *Framework {
	return &Framework{t: t}
}

// E2E creates a new end-to-end test with the provided startup config.
// If cfg is nil, a local default config is used.
func (f *Framework) E2E(cfg *config.Config) *E2E {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &E2E{
		t:      f.t,
		config: *cfg,
		plover: plover.New(cfg),
	}
}

// DefaultConfig returns a startup config for a local end-to-end test.
// The check config is loaded from testdata/checks.yaml, which the
// test writes before startup.
func DefaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.PloverName = "e2e.plover.telekom.com"
	cfg.Api.ListeningAddress = "localhost:50505"
	cfg.Probe.ListenAddress = "127.0.0.1:0"
	cfg.Loader.Type = "file"
	cfg.Loader.Interval = time.Second
	cfg.Loader.File.Path = checkConfigPath
	return cfg
}
