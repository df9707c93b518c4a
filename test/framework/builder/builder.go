// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package builder provides fluent builders for the runtime check
// configuration used in end-to-end tests.
package builder

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/telekom/plover/internal/helper"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/health"
)

// Check is a buildable check configuration fragment.
type Check interface {
	// YAML returns the yaml representation of the check configuration.
	YAML(t *testing.T) []byte
	// ExpectedWaitTime returns the time to wait until the check
	// has produced at least one result.
	ExpectedWaitTime() time.Duration
}

// HealthCheck builds a health check configuration.
type HealthCheck struct {
	cfg health.Config
}

// NewHealthCheck creates a health check builder with sane defaults.
func NewHealthCheck() *HealthCheck {
	return &HealthCheck{
		cfg: health.Config{
			Interval: time.Second,
			Timeout:  5 * time.Second,
			Retry: helper.RetryConfig{
				Count: 1,
				Delay: 500 * time.Millisecond,
			},
		},
	}
}

// WithTargets sets the targets of the health check.
func (h *HealthCheck) WithTargets(targets ...string) *HealthCheck {
	h.cfg.Targets = targets
	return h
}

// WithInterval sets the interval of the health check.
func (h *HealthCheck) WithInterval(interval time.Duration) *HealthCheck {
	h.cfg.Interval = interval
	return h
}

// WithTimeout sets the timeout of the health check.
func (h *HealthCheck) WithTimeout(timeout time.Duration) *HealthCheck {
	h.cfg.Timeout = timeout
	return h
}

// YAML returns the yaml representation of the health check configuration.
func (h *HealthCheck) YAML(t *testing.T) []byte {
	return marshal(t, map[string]any{"health": h.cfg})
}

// ExpectedWaitTime returns the time to wait until the health check
// has produced at least one result.
func (h *HealthCheck) ExpectedWaitTime() time.Duration {
	return h.cfg.Interval + h.cfg.Timeout
}

// ConnectivityCheck builds a connectivity check configuration.
type ConnectivityCheck struct {
	cfg connectivity.Config
}

// NewConnectivityCheck creates a connectivity check builder with sane defaults.
func NewConnectivityCheck() *ConnectivityCheck {
	return &ConnectivityCheck{
		cfg: connectivity.Config{
			Interval: time.Second,
		},
	}
}

// WithPeer adds a peer to the connectivity check.
func (c *ConnectivityCheck) WithPeer(host string, port int, identifier string) *ConnectivityCheck {
	c.cfg.Peers = append(c.cfg.Peers, connectivity.Peer{
		Host:       host,
		Port:       port,
		Identifier: identifier,
	})
	return c
}

// WithInterval sets the interval of the connectivity check.
func (c *ConnectivityCheck) WithInterval(interval time.Duration) *ConnectivityCheck {
	c.cfg.Interval = interval
	return c
}

// YAML returns the yaml representation of the connectivity check configuration.
func (c *ConnectivityCheck) YAML(t *testing.T) []byte {
	return marshal(t, map[string]any{"connectivity": c.cfg})
}

// ExpectedWaitTime returns the time to wait until the connectivity check
// has produced at least one result. A full probe of an unreachable peer
// walks through the direct phase and all echo rounds, so the wait
// accounts for the worst case.
func (c *ConnectivityCheck) ExpectedWaitTime() time.Duration {
	const worstCaseProbe = 5 * time.Second
	return c.cfg.Interval + worstCaseProbe
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal check config: %v", err)
	}
	return b
}
