// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/internal/natprobe"
	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/runtime"
	"github.com/telekom/plover/pkg/db"
	"github.com/telekom/plover/pkg/factory"
	"github.com/telekom/plover/pkg/plover/metrics"
)

func newTestController(t testing.TB, dbase db.DB) *ChecksController {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewChecksController(dbase, &metrics.ProviderMock{
		GetRegistryFunc: func() *prometheus.Registry { return registry },
	}, factory.Options{
		Classifier: &connectivity.PeerClassifierMock{
			ClassifyFunc: func(_ context.Context, _ natprobe.Address, _ string) natprobe.Report {
				return natprobe.Report{State: natprobe.StateProxy}
			},
		},
	})
}

func testRuntimeConfig() runtime.Config {
	return runtime.Config{
		Connectivity: &connectivity.Config{
			Peers:    []connectivity.Peer{{Host: "10.0.0.5", Port: 6112, Identifier: "abc123"}},
			Interval: 10 * time.Second,
		},
	}
}

func TestChecksController_Reconcile(t *testing.T) {
	cc := newTestController(t, db.NewInMemory())

	cc.Reconcile(t.Context(), testRuntimeConfig())
	assert.Equal(t, 1, countChecks(cc), "connectivity check should be registered")

	// Unchanged config updates in place
	cfg := testRuntimeConfig()
	cfg.Connectivity.Interval = 30 * time.Second
	cc.Reconcile(t.Context(), cfg)
	assert.Equal(t, 1, countChecks(cc))
	for c := range cc.checks.Iter() {
		assert.Equal(t, 30*time.Second, c.GetConfig().(*connectivity.Config).Interval)
	}

	// Empty config shuts everything down
	cc.Reconcile(t.Context(), runtime.Config{})
	assert.Equal(t, 0, countChecks(cc), "all checks should be unregistered")
}

func TestChecksController_ReconcileInvalidConfig(t *testing.T) {
	cc := newTestController(t, db.NewInMemory())

	cc.Reconcile(t.Context(), runtime.Config{
		Connectivity: &connectivity.Config{Interval: time.Millisecond},
	})
	assert.Equal(t, 0, countChecks(cc), "invalid config must not register checks")
}

func TestChecksController_RunSavesResults(t *testing.T) {
	saved := make(chan checks.ResultDTO, 1)
	dbase := &db.DBMock{
		SaveFunc: func(result checks.ResultDTO) {
			saved <- result
		},
	}
	cc := newTestController(t, dbase)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	cErr := make(chan error, 1)
	go func() {
		cErr <- cc.Run(ctx)
	}()

	cc.cResult <- checks.ResultDTO{Name: "connectivity", Result: &checks.Result{Data: "data", Timestamp: time.Now()}}

	select {
	case dto := <-saved:
		assert.Equal(t, "connectivity", dto.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the result to be saved")
	}

	cc.Shutdown(ctx)
	require.NoError(t, <-cErr)
}

func TestChecksController_GenerateCheckSpecs(t *testing.T) {
	cc := newTestController(t, db.NewInMemory())
	cc.Reconcile(t.Context(), testRuntimeConfig())

	doc, err := cc.GenerateCheckSpecs(t.Context())
	require.NoError(t, err)

	item := doc.Paths.Value("/v1/checks/connectivity")
	require.NotNil(t, item, "expected a path item for the connectivity check")
	assert.NotNil(t, item.Get)
}

func countChecks(cc *ChecksController) int {
	n := 0
	for range cc.checks.Iter() {
		n++
	}
	return n
}
