// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

/*
Package metrics provides Prometheus instrumentation for the playout engine.

# Overview

The package exposes:
  - Control API request rate and latency
  - Control WebSocket client count and broadcast/drop counts
  - Playback node lifecycle transitions, lifetimes, and failures
  - Renderer pool occupancy and lease churn per content kind
  - Render hierarchy active layer count and full-front rejections
  - Temperamental-node provider reevaluation latency and rejection counts
  - Per-content-kind circuit breaker state and trip counts

Metrics are exposed at /metrics in Prometheus text format via promhttp.Handler,
mounted by internal/control's router.

# Cardinality

Content-kind labels are bounded by media.Kind's small, fixed set (local_file,
web_stream, rtmp, graphics_layer); endpoint labels come from the fixed command
route table in internal/control, not from user input.
*/
package metrics
