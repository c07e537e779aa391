// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics exposes the broker's Prometheus instrumentation. A
// private registry is used throughout instead of the global default so
// tests can construct one per case without cross-test leakage.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the broker records, plus the private
// prometheus.Registry they are registered against.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PatchConflicts  prometheus.Counter
	JobsGauge       prometheus.Gauge
	LogBytesTotal   prometheus.Counter
}

// New builds a fresh Registry with every metric registered.
func New() Registry {
	reg := prometheus.NewRegistry()

	r := Registry{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bisect_broker_requests_total",
			Help: "Total HTTP requests handled, by method, path and status code.",
		}, []string{"method", "path", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bisect_broker_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		PatchConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bisect_broker_patch_conflicts_total",
			Help: "PATCH requests rejected with 412 due to an If-Match mismatch.",
		}),
		JobsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bisect_broker_jobs_total",
			Help: "Current number of jobs held by the store.",
		}),
		LogBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bisect_broker_log_bytes_total",
			Help: "Total bytes accepted by log append requests.",
		}),
	}

	reg.MustRegister(r.RequestsTotal, r.RequestDuration, r.PatchConflicts, r.JobsGauge, r.LogBytesTotal)
	return r
}

// Handler returns the promhttp handler serving this registry's exposition.
func (r Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Reset returns a freshly constructed Registry, used between test cases
// that would otherwise hit prometheus's "duplicate metrics collector
// registration" panic on a shared global registry.
func Reset() Registry {
	return New()
}
