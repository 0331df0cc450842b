// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package stress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics writes the summaries in the Prometheus text format so a node exporter textfile
// collector (or a human) can pick them up next to the other test artifacts.
func WriteMetrics(path, scenario string, total, api Summary) error {
	reg := prometheus.NewRegistry()

	latency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mystapp",
		Subsystem: "stress",
		Name:      "login_duration_seconds",
		Help:      "Login latency of the last stress run by statistic.",
	}, []string{"scenario", "measure", "stat"})
	attempts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mystapp",
		Subsystem: "stress",
		Name:      "login_attempts",
		Help:      "Login attempts of the last stress run by result.",
	}, []string{"scenario", "result"})
	reg.MustRegister(latency, attempts)

	for measure, s := range map[string]Summary{"total": total, "api": api} {
		if s.Count == 0 {
			continue
		}
		for stat, d := range map[string]float64{
			"min":  s.Min.Seconds(),
			"mean": s.Mean.Seconds(),
			"p50":  s.P50.Seconds(),
			"p95":  s.P95.Seconds(),
			"p99":  s.P99.Seconds(),
			"max":  s.Max.Seconds(),
		} {
			latency.WithLabelValues(scenario, measure, stat).Set(d)
		}
	}
	attempts.WithLabelValues(scenario, "success").Set(float64(total.Count))
	attempts.WithLabelValues(scenario, "failure").Set(float64(total.Failures))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
