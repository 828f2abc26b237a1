// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		method, endpoint, statusCode string
		duration                    time.Duration
	}{
		{"GET", "/api/v1/queue", "200", 5 * time.Millisecond},
		{"POST", "/api/v1/commands/skip", "200", 2 * time.Millisecond},
		{"POST", "/api/v1/commands/enqueue", "400", 1 * time.Millisecond},
	}
	for _, tt := range tests {
		RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
	}
}

func TestTrackActiveRequestLifecycle(t *testing.T) {
	for i := 0; i < 5; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
}

func TestRecordNodeTransitionAndLifetime(t *testing.T) {
	for _, status := range []string{"queued", "transitioningIn", "playing", "transitioningOut", "finished"} {
		RecordNodeTransition(status)
	}
	RecordNodeLifetime("localFile", 30*time.Second)
	RecordNodeFailure("localFile")
}

func TestRendererPoolGauges(t *testing.T) {
	SetRendererPoolFree("localFile", 3)
	RecordLeaseAcquired("localFile")
	RecordLeaseReleased("localFile")
}

func TestHierarchyGauges(t *testing.T) {
	SetHierarchyActiveLayers(2)
	RecordHierarchyFullRejection()
}

func TestTempNodeMetrics(t *testing.T) {
	RecordTempNodeReevaluation(5*time.Millisecond, 1)
	RecordTempNodeRejection("invalid_insertion")
}

func TestCircuitBreakerMetrics(t *testing.T) {
	SetCircuitBreakerState("localFile", 0)
	SetCircuitBreakerState("localFile", 2)
	RecordCircuitBreakerTrip("localFile")
}

func TestWSMetrics(t *testing.T) {
	RecordWSClientConnected(1)
	RecordWSClientConnected(-1)
	RecordWSBroadcast("active_snapshot")
	RecordWSDropped("queue_snapshot")
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		WSClientsConnected,
		WSMessagesBroadcast,
		WSMessagesDropped,
		NodeTransitionsTotal,
		NodeLifetimeSeconds,
		NodeFailuresTotal,
		RendererPoolFree,
		RendererLeasesAcquired,
		RendererLeasesReleased,
		HierarchyActiveLayers,
		HierarchyFullRejections,
		TempNodeReevaluationDuration,
		TempNodeActiveCount,
		TempNodeProviderRejections,
		CircuitBreakerState,
		CircuitBreakerTrips,
	}
	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)
		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("metric has no descriptors: %v", c)
		}
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordAPIRequest("GET", "/api/v1/queue", "200", time.Millisecond)
			RecordNodeTransition("playing")
			SetRendererPoolFree("localFile", 1)
		}()
	}
	wg.Wait()
}
