// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"fmt"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/tree"
)

// mediaRequest is the wire shape of a media.MediaObject in a command payload.
type mediaRequest struct {
	Name       string `json:"name" validate:"required"`
	Kind       string `json:"kind" validate:"required,mediakind"`
	Path       string `json:"path" validate:"required"`
	DurationMs int64  `json:"durationMs" validate:"mediaduration"`
}

func (m mediaRequest) toMediaObject() (media.MediaObject, error) {
	return media.New(m.Name, media.Kind(m.Kind), media.Location{Path: m.Path, Status: media.StatusPending}, m.DurationMs)
}

// contentBlockRequest is the wire shape of a media.ContentBlock in a command payload.
type contentBlockRequest struct {
	ID              string       `json:"id" validate:"required"`
	Colour          string       `json:"colour"`
	Media           mediaRequest `json:"media" validate:"required"`
	TransitionInMs  int64        `json:"transitionInMs" validate:"min=0"`
	TransitionOutMs int64        `json:"transitionOutMs" validate:"min=0"`
}

func (c contentBlockRequest) toContentBlock() (media.ContentBlock, error) {
	m, err := c.Media.toMediaObject()
	if err != nil {
		return media.ContentBlock{}, err
	}
	return media.NewContentBlock(c.ID, c.Colour, m, c.TransitionInMs, c.TransitionOutMs)
}

// enqueueRequest is the payload for POST /api/v1/queue.
type enqueueRequest struct {
	Block contentBlockRequest `json:"block" validate:"required"`
}

// enqueueRelativeRequest is the payload for POST /api/v1/queue/relative.
type enqueueRelativeRequest struct {
	Block     contentBlockRequest `json:"block" validate:"required"`
	TargetID  int64               `json:"targetId" validate:"required"`
	Start     string              `json:"start" validate:"required,oneof=sequenced concurrent"`
	OffsetMs  *int64              `json:"offsetMs,omitempty" validate:"omitempty,min=0"`
	OffsetPct *float64            `json:"offsetPercentage,omitempty" validate:"omitempty,min=0,max=1"`
	BeforeEnd bool                `json:"beforeEnd,omitempty"`
}

func (r enqueueRelativeRequest) toOffset() (*media.PlaybackOffset, error) {
	switch {
	case r.OffsetMs != nil && r.OffsetPct != nil:
		return nil, fmt.Errorf("control: specify offsetMs or offsetPercentage, not both")
	case r.OffsetPct != nil:
		off := media.AtPercentage(*r.OffsetPct)
		return &off, nil
	case r.OffsetMs != nil:
		if r.BeforeEnd {
			off := media.BeforeEnd(*r.OffsetMs)
			return &off, nil
		}
		off := media.AfterStart(*r.OffsetMs)
		return &off, nil
	default:
		return nil, nil
	}
}

// updateRequest is the payload for PUT /api/v1/queue/{id}.
type updateRequest struct {
	Block contentBlockRequest `json:"block" validate:"required"`
}

// reorderRequest is the payload for POST /api/v1/queue/reorder.
type reorderRequest struct {
	SourceID      int64 `json:"sourceId" validate:"required"`
	DestinationID int64 `json:"destinationId" validate:"required"`
	PlaceBefore   bool  `json:"placeBefore"`
}

// nodeIDResponse is returned by commands that create a node.
type nodeIDResponse struct {
	NodeID tree.NodeID `json:"nodeId"`
}

// errorResponse is the JSON body written on a failed command.
type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// okResponse is the JSON body written on a command with no interesting payload.
type okResponse struct {
	OK bool `json:"ok"`
}
