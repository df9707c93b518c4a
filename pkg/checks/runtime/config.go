// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"errors"
	"iter"

	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/health"
)

// Config holds the runtime configuration
// for the various checks
// the plover supports
type Config struct {
	Health       *health.Config       `yaml:"health" json:"health"`
	Connectivity *connectivity.Config `yaml:"connectivity" json:"connectivity"`
}

// Empty returns true if no checks are configured
func (c Config) Empty() bool {
	return c.size() == 0
}

func (c Config) Validate() (err error) {
	for cfg := range c.Iter() {
		if vErr := cfg.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}

	return err
}

// Iter returns configured checks as an iterator
func (c Config) Iter() iter.Seq[checks.Runtime] {
	return func(yield func(checks.Runtime) bool) {
		if c.Health != nil {
			if !yield(c.Health) {
				return
			}
		}
		if c.Connectivity != nil {
			if !yield(c.Connectivity) {
				return
			}
		}
	}
}

// size returns the number of checks configured
func (c Config) size() int {
	size := 0
	if c.HasHealthCheck() {
		size++
	}
	if c.HasConnectivityCheck() {
		size++
	}
	return size
}

// HasHealthCheck returns true if the check has a health check configured
func (c Config) HasHealthCheck() bool {
	return c.Health != nil
}

// HasConnectivityCheck returns true if the check has a connectivity check configured
func (c Config) HasConnectivityCheck() bool {
	return c.Connectivity != nil
}

// HasCheck returns true if the check has a check with the given name configured
func (c Config) HasCheck(name string) bool {
	switch name {
	case health.CheckName:
		return c.HasHealthCheck()
	case connectivity.CheckName:
		return c.HasConnectivityCheck()
	default:
		return false
	}
}

// For returns the runtime configuration for the check with the given name
func (c Config) For(name string) checks.Runtime {
	switch name {
	case health.CheckName:
		if c.HasHealthCheck() {
			return c.Health
		}
	case connectivity.CheckName:
		if c.HasConnectivityCheck() {
			return c.Connectivity
		}
	}
	return nil
}
