// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package media defines the immutable value types the playback engine
// schedules: MediaObject (the underlying piece of content), ContentBlock
// (a MediaObject wrapped with transition attributes), and PlaybackOffset
// (an anchor for concurrent-child start times).
package media
