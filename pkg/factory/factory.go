// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"errors"

	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/health"
	"github.com/telekom/plover/pkg/checks/runtime"
)

// Options carries the shared dependencies checks are built with.
type Options struct {
	// Classifier drives the connectivity check's peer probing.
	Classifier connectivity.PeerClassifier
}

// newCheck creates a new check instance from the given name
func newCheck(cfg checks.Runtime, opts Options) (checks.Check, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if f, ok := registry[cfg.For()]; ok {
		c := f(opts)
		err := c.UpdateConfig(cfg)
		return c, err
	}
	return nil, errors.New("unknown check type")
}

// NewChecksFromConfig creates all checks defined provided config
func NewChecksFromConfig(cfg runtime.Config, opts Options) (map[string]checks.Check, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := make(map[string]checks.Check)
	for c := range cfg.Iter() {
		check, err := newCheck(c, opts)
		if err != nil {
			return nil, err
		}
		result[check.Name()] = check
	}
	return result, nil
}

// registry is a convenience map to create new checks
var registry = map[string]func(Options) checks.Check{
	health.CheckName: func(Options) checks.Check {
		return health.NewCheck()
	},
	connectivity.CheckName: func(opts Options) checks.Check {
		return connectivity.NewCheck(opts.Classifier)
	},
}
