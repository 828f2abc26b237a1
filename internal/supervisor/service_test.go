// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestMockService_ImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*MockService)(nil)
}

// NewMockPlaybackService/NewMockControlService/NewMockSupportService are the
// constructors tree_test.go actually uses to stand in for the three
// SupervisorTree layers; verify each names itself after the layer it
// stands in for, so a crash log line reads "control-channel" rather than
// an anonymous "mock-1".
func TestMockService_DomainConstructorNames(t *testing.T) {
	tests := []struct {
		svc  *MockService
		want string
	}{
		{NewMockPlaybackService(), "playback-engine"},
		{NewMockControlService(), "control-channel"},
		{NewMockSupportService("event-bus"), "support:event-bus"},
	}
	for _, tt := range tests {
		if got := tt.svc.String(); got != tt.want {
			t.Errorf("expected name %q, got %q", tt.want, got)
		}
	}
}

func TestMockService_RunsUntilContextCanceled(t *testing.T) {
	svc := NewMockPlaybackService()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if svc.StartCount() != 1 {
		t.Errorf("expected 1 start, got %d", svc.StartCount())
	}
}

// A playback engine crash (renderer panic recovered into an error, say)
// should propagate as-is so the supervisor's restart policy sees it.
func TestMockService_PropagatesSimulatedFailure(t *testing.T) {
	svc := NewMockPlaybackService()
	svc.SetError(errors.New("renderer circuit breaker open"))

	err := svc.Serve(context.Background())
	if err == nil || err.Error() != "renderer circuit breaker open" {
		t.Errorf("expected simulated failure, got %v", err)
	}
}

func TestMockService_ErrDoNotRestart(t *testing.T) {
	svc := NewMockControlService()
	svc.SetError(suture.ErrDoNotRestart)

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("expected ErrDoNotRestart, got %v", err)
	}
}

func TestMockService_FailsNTimesThenSucceeds(t *testing.T) {
	svc := NewMockSupportService("websocket-hub")
	svc.SetFailCount(2)

	if err := svc.Serve(context.Background()); err == nil {
		t.Error("expected first call to fail")
	}
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("expected second call to fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected third call to run until timeout, got %v", err)
	}
	if svc.StartCount() != 3 {
		t.Errorf("expected 3 starts, got %d", svc.StartCount())
	}
}

// suture's actual restart-policy and tree-termination behavior (backoff,
// failure thresholds, hierarchical Add) is exercised end-to-end against a
// real SupervisorTree in tree_test.go; this file only verifies MockService's
// own bookkeeping is correct in isolation.
func TestMockService_StopCountTracksReturns(t *testing.T) {
	svc := NewMockControlService()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_ = svc.Serve(ctx)

	if svc.StopCount() != 1 {
		t.Errorf("expected 1 stop recorded, got %d", svc.StopCount())
	}
}
