// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics holds the Prometheus collectors cc-respd exposes on its
// admin HTTP surface, mirroring cc-backend's use of
// github.com/prometheus/client_golang for process-level instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ClusterCockpit/cc-respd/internal/store"
)

// Collectors bundles every metric cc-respd registers. It is independent
// of any particular *prometheus.Registry so tests can use a throwaway one.
type Collectors struct {
	ConnectionsActive prometheus.Gauge
	CommandsTotal     *prometheus.CounterVec
	KeysTotal         prometheus.Gauge
	ExpiredTotal      *prometheus.CounterVec
	PublishDelivered  prometheus.Gauge
	PublishDropped    prometheus.Gauge
}

// New creates and registers every collector on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cc_respd",
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cc_respd",
			Name:      "commands_total",
			Help:      "Commands dispatched by the executor, by command name.",
		}, []string{"command"}),
		KeysTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cc_respd",
			Name:      "keys_total",
			Help:      "Approximate number of keys currently stored.",
		}),
		ExpiredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cc_respd",
			Name:      "expired_total",
			Help:      "Keys evicted as expired, by eviction source.",
		}, []string{"source"}),
		PublishDelivered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cc_respd",
			Name:      "publish_delivered_total",
			Help:      "Cumulative subscriber deliveries across all PUBLISH calls.",
		}),
		PublishDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cc_respd",
			Name:      "publish_dropped_total",
			Help:      "Cumulative subscriber drops due to a full mailbox.",
		}),
	}

	reg.MustRegister(
		c.ConnectionsActive,
		c.CommandsTotal,
		c.KeysTotal,
		c.ExpiredTotal,
		c.PublishDelivered,
		c.PublishDropped,
	)
	return c
}

// OnCommand is wired into respserver.Server as its per-command callback.
func (c *Collectors) OnCommand(name string) {
	c.CommandsTotal.WithLabelValues(name).Inc()
}

// OnConnect is wired into respserver.Server as its per-accept callback.
func (c *Collectors) OnConnect() {
	c.ConnectionsActive.Inc()
}

// OnDisconnect is wired into respserver.Server as its per-connection-exit
// callback.
func (c *Collectors) OnDisconnect() {
	c.ConnectionsActive.Dec()
}

// OnActiveExpire is wired into expirer.Expirer as its per-tick callback.
func (c *Collectors) OnActiveExpire(n int) {
	if n > 0 {
		c.ExpiredTotal.WithLabelValues("active").Add(float64(n))
	}
}

// OnLazyExpire is wired into store.Store.OnLazyExpire as its per-eviction
// callback, feeding the "lazy" side of cc_respd_expired_total{source} to
// complement OnActiveExpire's "active" side.
func (c *Collectors) OnLazyExpire(n int) {
	if n > 0 {
		c.ExpiredTotal.WithLabelValues("lazy").Add(float64(n))
	}
}

// Refresh updates the point-in-time gauges from a Stats() snapshot.
func (c *Collectors) Refresh(st *store.Store) {
	stats := st.Stats()
	c.KeysTotal.Set(float64(stats.KeysTotal))
	c.PublishDelivered.Set(float64(stats.PublishDelivered))
	c.PublishDropped.Set(float64(stats.PublishDropped))
}
