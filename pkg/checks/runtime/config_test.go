// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/health"
)

func TestConfig_Iter(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{
			name: "empty config",
			cfg:  Config{},
			want: 0,
		},
		{
			name: "health only",
			cfg:  Config{Health: &health.Config{}},
			want: 1,
		},
		{
			name: "health and connectivity",
			cfg:  Config{Health: &health.Config{}, Connectivity: &connectivity.Config{}},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []checks.Runtime
			for cfg := range tt.cfg.Iter() {
				got = append(got, cfg)
			}
			assert.Len(t, got, tt.want)
			assert.Equal(t, tt.want == 0, tt.cfg.Empty())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Health: &health.Config{
			Targets:  []string{"https://relay.example.com/healthz"},
			Interval: time.Minute,
			Timeout:  5 * time.Second,
		},
		Connectivity: &connectivity.Config{
			Peers:    []connectivity.Peer{{Host: "10.0.0.5", Port: 6112}},
			Interval: 10 * time.Second,
		},
	}
	assert.NoError(t, valid.Validate())

	invalid := Config{
		Connectivity: &connectivity.Config{
			Peers:    []connectivity.Peer{{Host: "10.0.0.5", Port: 6112}},
			Interval: time.Millisecond,
		},
	}
	assert.Error(t, invalid.Validate())
}

func TestConfig_For(t *testing.T) {
	cfg := Config{Connectivity: &connectivity.Config{Interval: 10 * time.Second}}

	assert.True(t, cfg.HasCheck(connectivity.CheckName))
	assert.False(t, cfg.HasCheck(health.CheckName))
	assert.False(t, cfg.HasCheck("unknown"))

	assert.Equal(t, cfg.Connectivity, cfg.For(connectivity.CheckName))
	assert.Nil(t, cfg.For(health.CheckName))
	assert.Nil(t, cfg.For("unknown"))
}
