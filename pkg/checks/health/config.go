// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"fmt"
	"net/url"
	"time"

	"github.com/telekom/plover/internal/helper"
	"github.com/telekom/plover/pkg/checks"
)

const (
	minInterval = 100 * time.Millisecond
	minTimeout  = 500 * time.Millisecond
)

// Config defines the configuration parameters for the health check
type Config struct {
	// Targets are absolute URLs whose health endpoints should answer
	// with HTTP 200
	Targets []string `json:"targets,omitempty" yaml:"targets,omitempty" mapstructure:"targets"`
	// Interval is the interval between health check runs
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
	// Timeout is the timeout for a single health request
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Retry holds the retry configuration for failed health requests
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// For returns the name of the check
func (c *Config) For() string {
	return CheckName
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for _, t := range c.Targets {
		u, err := url.Parse(t)
		if err != nil || u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return checks.ErrInvalidConfig{CheckName: c.For(), Field: "targets", Reason: fmt.Sprintf("%q is not an absolute http(s) url", t)}
		}
	}

	if c.Interval < minInterval {
		return checks.ErrInvalidConfig{CheckName: c.For(), Field: "interval", Reason: fmt.Sprintf("interval must be at least %v", minInterval)}
	}

	if c.Timeout < minTimeout {
		return checks.ErrInvalidConfig{CheckName: c.For(), Field: "timeout", Reason: fmt.Sprintf("timeout must be at least %v", minTimeout)}
	}

	return nil
}
