// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package syncmetrics wires the sync engine's observable behavior —
// per-room status, host RPC latency, delta sizes — into Prometheus
// collectors so an operator can tell whether a peer is keeping up.
package syncmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors registered for one Engine.
type Metrics struct {
	roomsByStatus   *prometheus.GaugeVec
	rpcLatency      *prometheus.HistogramVec
	rpcFailures     *prometheus.CounterVec
	deltaBytesSent  prometheus.Counter
	updatesDropped  prometheus.Counter
	reconnectsTotal prometheus.Counter
}

// New builds and registers Metrics against registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		roomsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "river_sync_rooms_by_status",
			Help: "Number of tracked rooms currently in each sync status.",
		}, []string{"status"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "river_sync_rpc_latency_seconds",
			Help:    "Latency of host RPCs by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		rpcFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "river_sync_rpc_failures_total",
			Help: "Host RPC failures by operation.",
		}, []string{"op"}),
		deltaBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "river_sync_delta_bytes_sent_total",
			Help: "Total canonical-CBOR bytes sent in UPDATE operations.",
		}),
		updatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "river_sync_updates_dropped_total",
			Help: "Update notifications dropped because ApplyDelta/Merge rejected them.",
		}),
		reconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "river_sync_reconnects_total",
			Help: "Number of reconnect attempts after TransportLost.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.roomsByStatus, m.rpcLatency, m.rpcFailures,
		m.deltaBytesSent, m.updatesDropped, m.reconnectsTotal,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveRoomStatus sets the gauge for status to count, overwriting any
// previous reading — callers recompute the full distribution on each
// status-changing transition rather than incrementing/decrementing.
func (m *Metrics) ObserveRoomStatus(status string, count int) {
	m.roomsByStatus.WithLabelValues(status).Set(float64(count))
}

// ObserveRPC records the latency and outcome of a single host RPC.
func (m *Metrics) ObserveRPC(op string, d time.Duration, err error) {
	m.rpcLatency.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.rpcFailures.WithLabelValues(op).Inc()
	}
}

// ObserveDeltaSent records the byte size of a delta pushed in an UPDATE.
func (m *Metrics) ObserveDeltaSent(bytes int) {
	m.deltaBytesSent.Add(float64(bytes))
}

// ObserveUpdateDropped records an UpdateNotification rejected by
// ApplyDelta/Merge.
func (m *Metrics) ObserveUpdateDropped() {
	m.updatesDropped.Inc()
}

// ObserveReconnect records a reconnect attempt.
func (m *Metrics) ObserveReconnect() {
	m.reconnectsTotal.Inc()
}
