// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package instruments:
// - The control-channel HTTP/WebSocket API
// - Playback tree node lifecycle transitions
// - Renderer pool occupancy and lease churn
// - Render hierarchy layer occupancy
// - Temperamental-node provider reevaluation
// - Per-content-type circuit breaker state

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_api_requests_total",
			Help: "Total number of control API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playoutd_api_request_duration_seconds",
			Help:    "Control API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playoutd_api_active_requests",
			Help: "Current number of in-flight control API requests",
		},
	)

	// WebSocket Control Channel Metrics
	WSClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playoutd_ws_clients_connected",
			Help: "Current number of connected control WebSocket clients",
		},
	)

	WSMessagesBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_ws_messages_broadcast_total",
			Help: "Total number of messages broadcast to control WebSocket clients",
		},
		[]string{"topic"},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_ws_messages_dropped_total",
			Help: "Total number of broadcast messages dropped due to a full client buffer",
		},
		[]string{"topic"},
	)

	// Node Lifecycle Metrics
	NodeTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_node_transitions_total",
			Help: "Total number of playback node status transitions",
		},
		[]string{"to_status"},
	)

	NodeLifetimeSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playoutd_node_lifetime_seconds",
			Help:    "Wall-clock time a node spent in the active front before finishing",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"content_kind"},
	)

	NodeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_node_failures_total",
			Help: "Total number of nodes that finished via a renderer failure path",
		},
		[]string{"content_kind"},
	)

	// Renderer Pool Metrics
	RendererPoolFree = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playoutd_renderer_pool_free",
			Help: "Number of idle renderers currently held in the pool, by content kind",
		},
		[]string{"content_kind"},
	)

	RendererLeasesAcquired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_renderer_leases_acquired_total",
			Help: "Total number of renderer leases acquired from the pool",
		},
		[]string{"content_kind"},
	)

	RendererLeasesReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_renderer_leases_released_total",
			Help: "Total number of renderer leases released back to the pool",
		},
		[]string{"content_kind"},
	)

	// Render Hierarchy Metrics
	HierarchyActiveLayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playoutd_hierarchy_active_layers",
			Help: "Current number of renderers occupying the Z-ordered render hierarchy",
		},
	)

	HierarchyFullRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playoutd_hierarchy_full_rejections_total",
			Help: "Total number of node starts rejected because the playback front was already at maxActiveRenderers",
		},
	)

	// Temperamental Node Provider Metrics
	TempNodeReevaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playoutd_tempnode_reevaluation_duration_seconds",
			Help:    "Time taken to re-poll every temperamental-node provider and splice its output",
			Buckets: prometheus.DefBuckets,
		},
	)

	TempNodeActiveCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playoutd_tempnode_active_count",
			Help: "Current number of temperamental nodes spliced into the playback tree",
		},
	)

	TempNodeProviderRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_tempnode_provider_rejections_total",
			Help: "Total number of temp-node provider insertions rejected as invalid or unattachable",
		},
		[]string{"reason"},
	)

	// Circuit Breaker Metrics (one gauge per renderer content kind, 0=closed 1=half-open 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playoutd_circuit_breaker_state",
			Help: "Current gobreaker state per renderer content kind (0=closed, 1=half-open, 2=open)",
		},
		[]string{"content_kind"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playoutd_circuit_breaker_trips_total",
			Help: "Total number of times a renderer's circuit breaker tripped open",
		},
		[]string{"content_kind"},
	)
)

// RecordAPIRequest records a control API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active control API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordNodeTransition records a playback node entering a new lifecycle status.
func RecordNodeTransition(toStatus string) {
	NodeTransitionsTotal.WithLabelValues(toStatus).Inc()
}

// RecordNodeLifetime records how long a node spent active before finishing.
func RecordNodeLifetime(contentKind string, lifetime time.Duration) {
	NodeLifetimeSeconds.WithLabelValues(contentKind).Observe(lifetime.Seconds())
}

// RecordNodeFailure records a node that finished via the renderer-failure path.
func RecordNodeFailure(contentKind string) {
	NodeFailuresTotal.WithLabelValues(contentKind).Inc()
}

// SetRendererPoolFree sets the idle-renderer gauge for a content kind.
func SetRendererPoolFree(contentKind string, count int) {
	RendererPoolFree.WithLabelValues(contentKind).Set(float64(count))
}

// RecordLeaseAcquired records a renderer lease acquisition.
func RecordLeaseAcquired(contentKind string) {
	RendererLeasesAcquired.WithLabelValues(contentKind).Inc()
}

// RecordLeaseReleased records a renderer lease release.
func RecordLeaseReleased(contentKind string) {
	RendererLeasesReleased.WithLabelValues(contentKind).Inc()
}

// SetHierarchyActiveLayers reports the current occupied layer count.
func SetHierarchyActiveLayers(count int) {
	HierarchyActiveLayers.Set(float64(count))
}

// RecordHierarchyFullRejection records a node start rejected by a full front.
func RecordHierarchyFullRejection() {
	HierarchyFullRejections.Inc()
}

// RecordTempNodeReevaluation records one reevaluateTempNodes pass.
func RecordTempNodeReevaluation(duration time.Duration, activeCount int) {
	TempNodeReevaluationDuration.Observe(duration.Seconds())
	TempNodeActiveCount.Set(float64(activeCount))
}

// RecordTempNodeRejection records a provider insertion that was rejected.
func RecordTempNodeRejection(reason string) {
	TempNodeProviderRejections.WithLabelValues(reason).Inc()
}

// SetCircuitBreakerState reports a content kind's current breaker state.
func SetCircuitBreakerState(contentKind string, state int) {
	CircuitBreakerState.WithLabelValues(contentKind).Set(float64(state))
}

// RecordCircuitBreakerTrip records a breaker tripping open for a content kind.
func RecordCircuitBreakerTrip(contentKind string) {
	CircuitBreakerTrips.WithLabelValues(contentKind).Inc()
}

// RecordWSClientConnected adjusts the connected-client gauge.
func RecordWSClientConnected(delta int) {
	WSClientsConnected.Add(float64(delta))
}

// RecordWSBroadcast records a message broadcast to control WebSocket clients.
func RecordWSBroadcast(topic string) {
	WSMessagesBroadcast.WithLabelValues(topic).Inc()
}

// RecordWSDropped records a broadcast message dropped for a full client buffer.
func RecordWSDropped(topic string) {
	WSMessagesDropped.WithLabelValues(topic).Inc()
}
