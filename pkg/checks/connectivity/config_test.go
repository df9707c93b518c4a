// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package connectivity

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Peers:    []Peer{{Host: "10.0.0.5", Port: 6112, Identifier: "abc123"}},
				Interval: 10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "missing peer host",
			config: Config{
				Peers:    []Peer{{Port: 6112}},
				Interval: 10 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "peer port out of range",
			config: Config{
				Peers:    []Peer{{Host: "10.0.0.5", Port: 70000}},
				Interval: 10 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "interval too short",
			config: Config{
				Peers:    []Peer{{Host: "10.0.0.5", Port: 6112}},
				Interval: 100 * time.Millisecond,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
