// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package connectivity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/plover/pkg/checks"
)

// metrics defines the metric collectors of the connectivity check
type metrics struct {
	state     *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	count     *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// newMetrics initializes metric collectors of the connectivity check
func newMetrics() metrics {
	return metrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plover_connectivity_state",
				Help: "Connectivity level of the peer. 2 is directly reachable, 1 is reachable after hole punching, 0 is relay only.",
			},
			[]string{"peer"},
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plover_connectivity_duration_seconds",
				Help: "Duration of the last classification run for the peer in seconds.",
			},
			[]string{"peer"},
		),
		count: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plover_connectivity_check_count",
				Help: "Total number of classification runs performed on the peer.",
			},
			[]string{"peer"},
		),
		histogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "plover_connectivity_duration",
				Help: "Histogram of classification runtimes in seconds.",
			},
			[]string{"peer"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.state,
		m.duration,
		m.count,
		m.histogram,
	}
}

// Set sets the metrics of one peer classification result
func (m *metrics) Set(peer string, res peerResult) {
	m.state.WithLabelValues(peer).Set(float64(res.State.Rank()))
	m.duration.WithLabelValues(peer).Set(res.Total)
	m.histogram.WithLabelValues(peer).Observe(res.Total)
	m.count.WithLabelValues(peer).Inc()
}

// Remove removes the metrics of one peer
func (m *metrics) Remove(peer string) error {
	if !m.state.DeleteLabelValues(peer) {
		return checks.ErrMetricNotFound{Label: peer}
	}

	if !m.duration.DeleteLabelValues(peer) {
		return checks.ErrMetricNotFound{Label: peer}
	}

	if !m.count.DeleteLabelValues(peer) {
		return checks.ErrMetricNotFound{Label: peer}
	}

	if !m.histogram.DeleteLabelValues(peer) {
		return checks.ErrMetricNotFound{Label: peer}
	}

	return nil
}
