// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/tree"
)

type fakeEngine struct {
	enqueueErr     error
	lastBlock      media.ContentBlock
	lastTarget     tree.NodeID
	lastStart      tree.StartType
	lastOffset     *media.PlaybackOffset
	dequeueErr     error
	updateErr      error
	reorderErr     error
	skipErr        error
	restartErr     error
	stopErr        error
	queueSnapshot  events.QueueSnapshot
	activeSnapshot events.ActiveSnapshot
	snapshotErr    error
}

func (f *fakeEngine) Enqueue(block media.ContentBlock) (tree.NodeID, error) {
	f.lastBlock = block
	if f.enqueueErr != nil {
		return 0, f.enqueueErr
	}
	return 42, nil
}

func (f *fakeEngine) EnqueueRelative(block media.ContentBlock, target tree.NodeID, start tree.StartType, offset *media.PlaybackOffset) (tree.NodeID, error) {
	f.lastBlock, f.lastTarget, f.lastStart, f.lastOffset = block, target, start, offset
	if f.enqueueErr != nil {
		return 0, f.enqueueErr
	}
	return 43, nil
}

func (f *fakeEngine) Dequeue(id tree.NodeID) error                          { return f.dequeueErr }
func (f *fakeEngine) Update(id tree.NodeID, newBlock media.ContentBlock) error { f.lastBlock = newBlock; return f.updateErr }
func (f *fakeEngine) Reorder(source, destination tree.NodeID, placeBefore bool) error {
	return f.reorderErr
}
func (f *fakeEngine) Skip() error          { return f.skipErr }
func (f *fakeEngine) Restart() error       { return f.restartErr }
func (f *fakeEngine) StopToDefault() error { return f.stopErr }
func (f *fakeEngine) GetQueueSnapshot() (events.QueueSnapshot, error) {
	return f.queueSnapshot, f.snapshotErr
}
func (f *fakeEngine) GetActiveSnapshot() (events.ActiveSnapshot, error) {
	return f.activeSnapshot, f.snapshotErr
}

func newTestHandler(engine Engine) *Handler {
	return NewHandler(engine, NewHub(), nil)
}

func validEnqueueBody() []byte {
	body, _ := json.Marshal(enqueueRequest{
		Block: contentBlockRequest{
			ID:     "blk-1",
			Colour: "#ff0000",
			Media: mediaRequest{
				Name:       "slate",
				Kind:       "local_file",
				Path:       "/data/slate.mp4",
				DurationMs: 5000,
			},
			TransitionInMs:  0,
			TransitionOutMs: 0,
		},
	})
	return body
}

func TestHandlerEnqueueSuccess(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(validEnqueueBody()))
	rec := httptest.NewRecorder()
	h.Enqueue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp nodeIDResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.NodeID != 42 {
		t.Fatalf("expected nodeId 42, got %d", resp.NodeID)
	}
	if fe.lastBlock.ID != "blk-1" {
		t.Fatalf("expected engine to receive block id blk-1, got %q", fe.lastBlock.ID)
	}
}

func TestHandlerEnqueueRejectsMissingFields(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader([]byte(`{"block":{}}`)))
	rec := httptest.NewRecorder()
	h.Enqueue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing required fields, got %d", rec.Code)
	}
}

func TestHandlerEnqueuePropagatesEngineError(t *testing.T) {
	fe := &fakeEngine{enqueueErr: errors.New("hierarchy full")}
	h := newTestHandler(fe)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue", bytes.NewReader(validEnqueueBody()))
	rec := httptest.NewRecorder()
	h.Enqueue(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandlerEnqueueRelativeWithPercentageOffset(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	pct := 0.5
	body, _ := json.Marshal(enqueueRelativeRequest{
		Block: contentBlockRequest{
			ID:     "overlay-1",
			Media:  mediaRequest{Name: "bug", Kind: "graphics_layer", Path: "bug://corner", DurationMs: media.InfiniteDuration},
		},
		TargetID:  7,
		Start:     "concurrent",
		OffsetPct: &pct,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/relative", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.EnqueueRelative(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if fe.lastTarget != 7 || fe.lastStart != tree.Concurrent {
		t.Fatalf("expected target=7 start=concurrent, got target=%d start=%s", fe.lastTarget, fe.lastStart)
	}
	if fe.lastOffset == nil {
		t.Fatal("expected a non-nil offset to reach the engine")
	}
}

func TestHandlerEnqueueRelativeRejectsConflictingOffsets(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	ms := int64(1000)
	pct := 0.5
	body, _ := json.Marshal(enqueueRelativeRequest{
		Block:     contentBlockRequest{ID: "x", Media: mediaRequest{Name: "x", Kind: "local_file", Path: "/x", DurationMs: 1000}},
		TargetID:  1,
		Start:     "sequenced",
		OffsetMs:  &ms,
		OffsetPct: &pct,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/relative", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.EnqueueRelative(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for conflicting offsets, got %d", rec.Code)
	}
}

func TestHandlerDequeue(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	r := chi.NewRouter()
	r.Delete("/api/v1/queue/{id}", h.Dequeue)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/queue/5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDequeueRejectsNonNumericID(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	r := chi.NewRouter()
	r.Delete("/api/v1/queue/{id}", h.Dequeue)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/queue/not-a-number", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerSkipRestartStop(t *testing.T) {
	fe := &fakeEngine{}
	h := newTestHandler(fe)

	for _, tc := range []struct {
		name string
		fn   http.HandlerFunc
	}{
		{"skip", h.Skip},
		{"restart", h.Restart},
		{"stop", h.StopToDefault},
	} {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		rec := httptest.NewRecorder()
		tc.fn(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tc.name, rec.Code)
		}
	}
}

func TestHandlerQueueSnapshot(t *testing.T) {
	fe := &fakeEngine{queueSnapshot: events.QueueSnapshot{Entries: []events.QueueEntry{{ID: "a"}}}}
	h := newTestHandler(fe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue", nil)
	rec := httptest.NewRecorder()
	h.QueueSnapshot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap events.QueueSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].ID != "a" {
		t.Fatalf("unexpected snapshot body: %+v", snap)
	}
}

func TestHandlerPerformanceWithNoMonitor(t *testing.T) {
	h := newTestHandler(&fakeEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/performance", nil)
	rec := httptest.NewRecorder()
	h.Performance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "[]\n" && rec.Body.String() != "[]" {
		t.Fatalf("expected an empty JSON array, got %q", rec.Body.String())
	}
}

func TestHandlerHealthReadyFailsWhenEngineErrors(t *testing.T) {
	fe := &fakeEngine{snapshotErr: errors.New("dispatch loop wedged")}
	h := newTestHandler(fe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	rec := httptest.NewRecorder()
	h.HealthReady(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
