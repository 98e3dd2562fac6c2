// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the optional set of Prometheus counters a Status reports
// admission-core activity through. A nil *Metrics is always safe to use:
// every increment method is a no-op on a nil receiver, so instrumentation
// can be wired in only where a caller actually runs a registry.
type Metrics struct {
	Admitted     prometheus.Counter
	Deferred     prometheus.Counter
	Dropped      prometheus.Counter
	Backpressure prometheus.Counter
	OverRequest  prometheus.Counter

	UrgentRingDepth  prometheus.Gauge
	BinPoolDepth     prometheus.Gauge
	AdmittedOutDepth prometheus.Gauge
}

// NewMetrics registers and returns the counter set under namespace. Panics
// on duplicate registration, matching prometheus.MustRegister's own contract.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Admitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "admitted_edges_total",
			Help: "Total (src,dst) edges admitted across all timeslots.",
		}),
		Deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "deferred_entries_total",
			Help: "Total demand entries deferred to the next phase.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_entries_total",
			Help: "Total demand entries dropped as stale (reset epoch or drained demand).",
		}),
		Backpressure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "urgent_ring_backpressure_total",
			Help: "Total AddBacklog calls that found the urgent ring full.",
		}),
		OverRequest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "over_request_total",
			Help: "Total flows whose demand saturated at the maximum representable value.",
		}),
		UrgentRingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "urgent_ring_depth",
			Help: "Approximate occupancy of the urgent-signal ring, sampled on AddBacklog.",
		}),
		BinPoolDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "bin_pool_depth",
			Help: "Approximate occupancy of the resident bin pool, sampled each batch.",
		}),
		AdmittedOutDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "admitted_out_depth",
			Help: "Approximate occupancy of the admitted-output ring, sampled each batch.",
		}),
	}
	reg.MustRegister(m.Admitted, m.Deferred, m.Dropped, m.Backpressure, m.OverRequest,
		m.UrgentRingDepth, m.BinPoolDepth, m.AdmittedOutDepth)
	return m
}

func (m *Metrics) incAdmitted() {
	if m == nil {
		return
	}
	m.Admitted.Inc()
}

func (m *Metrics) incDeferred() {
	if m == nil {
		return
	}
	m.Deferred.Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) incBackpressure() {
	if m == nil {
		return
	}
	m.Backpressure.Inc()
}

func (m *Metrics) incOverRequest() {
	if m == nil {
		return
	}
	m.OverRequest.Inc()
}

func (m *Metrics) setUrgentRingDepth(n int) {
	if m == nil {
		return
	}
	m.UrgentRingDepth.Set(float64(n))
}

func (m *Metrics) setBinPoolDepth(n int) {
	if m == nil {
		return
	}
	m.BinPoolDepth.Set(float64(n))
}

func (m *Metrics) setAdmittedOutDepth(n int) {
	if m == nil {
		return
	}
	m.AdmittedOutDepth.Set(float64(n))
}
