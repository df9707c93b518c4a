// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/plover/pkg/checks"
)

// metrics is the gauge collector of the health check
type metrics struct {
	*prometheus.GaugeVec
}

// newMetrics initializes the metric collector of the health check
func newMetrics() metrics {
	return metrics{
		GaugeVec: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plover_health_up",
				Help: "Health of the target. 1 is healthy, 0 is unhealthy.",
			},
			[]string{"target"},
		),
	}
}

// Remove removes the metrics of one target
func (m metrics) Remove(target string) error {
	if !m.DeleteLabelValues(target) {
		return checks.ErrMetricNotFound{Label: target}
	}
	return nil
}
