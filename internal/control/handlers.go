// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	goccyjson "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/middleware"
	"github.com/clearcast/playoutd/internal/tree"
	"github.com/clearcast/playoutd/internal/validation"
)

// upgrader accepts control-channel WebSocket connections. Origin checking
// is delegated to CORS on the HTTP layer; this channel carries read-only
// broadcast traffic, not credentialed browser state.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Engine is the subset of *engine.Engine the control channel depends on.
// Defined locally so handlers can be exercised against a fake in tests
// without starting the dispatch loop.
type Engine interface {
	Enqueue(block media.ContentBlock) (tree.NodeID, error)
	EnqueueRelative(block media.ContentBlock, target tree.NodeID, start tree.StartType, offset *media.PlaybackOffset) (tree.NodeID, error)
	Dequeue(id tree.NodeID) error
	Update(id tree.NodeID, newBlock media.ContentBlock) error
	Reorder(source, destination tree.NodeID, placeBefore bool) error
	Skip() error
	Restart() error
	StopToDefault() error
	GetQueueSnapshot() (events.QueueSnapshot, error)
	GetActiveSnapshot() (events.ActiveSnapshot, error)
}

// Handler implements the control channel's HTTP command surface over an Engine.
type Handler struct {
	engine Engine
	hub    *Hub
	perf   *middleware.PerformanceMonitor
}

// NewHandler builds a Handler over the given engine and broadcast hub. perf
// may be nil; Performance then reports an empty stats list.
func NewHandler(engine Engine, hub *Hub, perf *middleware.PerformanceMonitor) *Handler {
	return &Handler{engine: engine, hub: hub, perf: perf}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := goccyjson.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode control response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, err *validation.RequestValidationError) {
	apiErr := err.ToAPIError()
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return goccyjson.NewDecoder(r.Body).Decode(v)
}

func parseNodeID(r *http.Request, key string) (tree.NodeID, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("control: invalid node id")
	}
	return tree.NodeID(id), nil
}

// Enqueue handles POST /api/v1/queue.
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}
	block, err := req.Block.toContentBlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	id, err := h.engine.Enqueue(block)
	if err != nil {
		writeError(w, http.StatusConflict, "ENQUEUE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, nodeIDResponse{NodeID: id})
}

// EnqueueRelative handles POST /api/v1/queue/relative.
func (h *Handler) EnqueueRelative(w http.ResponseWriter, r *http.Request) {
	var req enqueueRelativeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}
	block, err := req.Block.toContentBlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	offset, err := req.toOffset()
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	id, err := h.engine.EnqueueRelative(block, tree.NodeID(req.TargetID), tree.StartType(req.Start), offset)
	if err != nil {
		writeError(w, http.StatusConflict, "ENQUEUE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, nodeIDResponse{NodeID: id})
}

// Dequeue handles DELETE /api/v1/queue/{id}.
func (h *Handler) Dequeue(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	ctx := logging.ContextWithNodeID(r.Context(), int64(id))
	if err := h.engine.Dequeue(id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("dequeue request rejected")
		writeError(w, http.StatusConflict, "DEQUEUE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Update handles PUT /api/v1/queue/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}
	block, err := req.Block.toContentBlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	ctx := logging.ContextWithNodeID(r.Context(), int64(id))
	if err := h.engine.Update(id, block); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("update request rejected")
		writeError(w, http.StatusConflict, "UPDATE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Reorder handles POST /api/v1/queue/reorder.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}
	err := h.engine.Reorder(tree.NodeID(req.SourceID), tree.NodeID(req.DestinationID), req.PlaceBefore)
	if err != nil {
		writeError(w, http.StatusConflict, "REORDER_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Skip handles POST /api/v1/transport/skip.
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Skip(); err != nil {
		writeError(w, http.StatusConflict, "SKIP_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Restart handles POST /api/v1/transport/restart.
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Restart(); err != nil {
		writeError(w, http.StatusConflict, "RESTART_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// StopToDefault handles POST /api/v1/transport/stop.
func (h *Handler) StopToDefault(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.StopToDefault(); err != nil {
		writeError(w, http.StatusConflict, "STOP_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// QueueSnapshot handles GET /api/v1/queue.
func (h *Handler) QueueSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.GetQueueSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SNAPSHOT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ActiveSnapshot handles GET /api/v1/active.
func (h *Handler) ActiveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.GetActiveSnapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SNAPSHOT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HealthLive handles GET /api/v1/health/live: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// HealthReady handles GET /api/v1/health/ready: the dispatch loop answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engine.GetActiveSnapshot(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// Performance handles GET /api/v1/performance: per-endpoint latency
// percentiles gathered by the performance-monitoring middleware.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		writeJSON(w, http.StatusOK, []middleware.EndpointStats{})
		return
	}
	writeJSON(w, http.StatusOK, h.perf.GetStats())
}

// WebSocket upgrades GET /api/v1/ws into a control-channel broadcast
// subscription, registers the client with the hub, and returns once the
// client's read and write pumps are started.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("control websocket upgrade failed")
		return
	}
	client := NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
