// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package connectivity

import (
	"fmt"
	"time"

	"github.com/telekom/plover/internal/natprobe"
	"github.com/telekom/plover/pkg/checks"
)

const minInterval = time.Second

// Peer identifies a remote peer whose connectivity should be classified.
type Peer struct {
	// Host is the IP address or hostname the peer claims to be reachable on.
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	// Port is the peer's UDP probe port.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// Identifier disambiguates concurrent probe sessions sharing the
	// transport. If empty, a fresh one is generated for every run.
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty" mapstructure:"identifier"`
}

// Addr returns the peer's dialed probe address.
func (p Peer) Addr() natprobe.Address {
	return natprobe.Address{Host: p.Host, Port: p.Port}
}

func (p Peer) String() string {
	return p.Addr().String()
}

// Config defines the configuration parameters for the connectivity check
type Config struct {
	Peers    []Peer        `json:"peers,omitempty" yaml:"peers,omitempty" mapstructure:"peers"`
	Interval time.Duration `json:"interval" yaml:"interval" mapstructure:"interval"`
}

// For returns the name of the check
func (c *Config) For() string {
	return CheckName
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for _, p := range c.Peers {
		if err := p.Addr().Validate(); err != nil {
			return checks.ErrInvalidConfig{CheckName: c.For(), Field: "peers", Reason: err.Error()}
		}
	}

	if c.Interval < minInterval {
		return checks.ErrInvalidConfig{CheckName: c.For(), Field: "interval", Reason: fmt.Sprintf("interval must be at least %v", minInterval)}
	}

	return nil
}
