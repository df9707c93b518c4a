// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/internal/udpserver"
	"github.com/telekom/plover/pkg/api"
	"github.com/telekom/plover/pkg/config"
)

func testStartupConfig() *config.Config {
	return &config.Config{
		PloverName: "plover.example.com",
		Api:        api.Config{ListeningAddress: "localhost:0"},
		Probe:      udpserver.Config{ListenAddress: "127.0.0.1:0"},
		Loader: config.LoaderConfig{
			Type:     "file",
			File:     config.FileLoaderConfig{Path: "../config/test/data/config.yaml"},
			Interval: time.Second,
		},
	}
}

// TestPlover_Run_FullComponentStart tests that the Run method starts the
// probe listener, loader, API and controller.
func TestPlover_Run_FullComponentStart(t *testing.T) {
	p := New(testStartupConfig())

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { require.ErrorIs(t, p.Run(ctx), ErrFinalShutdown) }()

	t.Log("Running plover for 100ms")
	<-time.After(100 * time.Millisecond)
}

// TestPlover_Run_ContextCancel tests that after a context cancels the Run
// method will return an error and all started components will be shut down.
func TestPlover_Run_ContextCancel(t *testing.T) {
	p := New(testStartupConfig())

	ctx, cancel := context.WithCancel(t.Context())
	cErr := make(chan error, 1)
	go func() {
		cErr <- p.Run(ctx)
	}()

	t.Log("Running plover for 10ms")
	time.Sleep(time.Millisecond * 10)

	t.Log("Canceling context and waiting for shutdown")
	cancel()

	select {
	case err := <-cErr:
		require.ErrorIs(t, err, ErrFinalShutdown)
	case <-time.After(5 * time.Second):
		t.Fatal("plover did not shut down in time")
	}
}

// TestPlover_Run_FailingBind tests that a probe listener that cannot bind
// makes the startup fail.
func TestPlover_Run_FailingBind(t *testing.T) {
	cfg := testStartupConfig()
	cfg.Probe.ListenAddress = "256.0.0.1:6112"
	p := New(cfg)

	err := p.Run(t.Context())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrFinalShutdown)
}
