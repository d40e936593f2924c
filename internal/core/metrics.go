package core

import "github.com/prometheus/client_golang/prometheus"

// metrics carries the reactor's instrumentation. A nil receiver is valid and
// turns every method into a no-op, so an unconfigured registerer costs
// nothing on the hot paths.
type metrics struct {
	descriptorsLive  prometheus.Gauge
	spawnsTotal      prometheus.Counter
	spawnFailsTotal  prometheus.Counter
	reapsTotal       prometheus.Counter
	escalationsTotal prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	m := &metrics{
		descriptorsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pipespawn",
			Name:      "descriptors_live",
			Help:      "Pipe descriptors currently registered across all slots.",
		}),
		spawnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipespawn",
			Name:      "spawns_total",
			Help:      "Children successfully launched.",
		}),
		spawnFailsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipespawn",
			Name:      "spawn_failures_total",
			Help:      "Spawn attempts that failed before the child existed.",
		}),
		reapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipespawn",
			Name:      "reaps_total",
			Help:      "Child exits collected.",
		}),
		escalationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipespawn",
			Name:      "signal_escalations_total",
			Help:      "Terminations that needed more than the initial SIGTERM.",
		}),
	}
	reg.MustRegister(
		m.descriptorsLive, m.spawnsTotal, m.spawnFailsTotal,
		m.reapsTotal, m.escalationsTotal,
	)
	return m
}

func (m *metrics) descriptorOpened() {
	if m != nil {
		m.descriptorsLive.Inc()
	}
}

func (m *metrics) descriptorClosed() {
	if m != nil {
		m.descriptorsLive.Dec()
	}
}

func (m *metrics) spawned() {
	if m != nil {
		m.spawnsTotal.Inc()
	}
}

func (m *metrics) spawnFailed() {
	if m != nil {
		m.spawnFailsTotal.Inc()
	}
}

func (m *metrics) reaped() {
	if m != nil {
		m.reapsTotal.Inc()
	}
}

func (m *metrics) escalated() {
	if m != nil {
		m.escalationsTotal.Inc()
	}
}
