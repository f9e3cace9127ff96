/*
NAME
  ack.go

DESCRIPTION
  ack.go implements the ACK tracker: it consumes decoded ACK frames,
  maintains the latest FPGA snapshot under the frame_echo monotonicity
  rule, and records frame-stat samples (sync-wait time, VRAM-ready bit) for
  every submitted frame the FPGA echoes back.

  The sync-wait value recorded for a frame is the sync_wait_ms the caller
  passed to Submit for that frame (mirroring the original C ABI's
  gmz_submit(..., double sync_wait_ms) parameter): the emulation core
  measures its own per-cycle timing and hands it to the library, rather
  than the library deriving it from a submit-to-ACK host-clock delta.

AUTHOR
  groovymister authors, after the bookkeeping style of
  protocol/rtcp/client.go's parse/setSenderTs/markReceivedTime.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovy

import "time"

// Snapshot is the latest known FPGA state as reported by ACK frames. Fields
// are updated only when a new ACK's FrameEcho is >= the currently held one
// (out-of-order ACKs are discarded).
type Snapshot struct {
	Frame        uint32
	FrameEcho    uint32
	VCount       uint16
	VCountEcho   uint16
	VRAMReady    uint8
	VRAMEndFrame uint8
	VRAMSynced   uint8
	VGAFrameskip uint8
	VGAVBlank    uint8
	VGAF1        uint8
	AudioActive  uint8
	VRAMQueue    uint8

	// CapturedAt is the host time at which this snapshot's fields were last
	// updated; the raster solver projects scanline position forward from
	// here.
	CapturedAt time.Time
}

// Tracker owns the latest Snapshot and the bookkeeping needed to turn
// incoming ACKs into FrameStats samples.
type Tracker struct {
	snap Snapshot

	// pending maps a submitted frame number to the sync_wait_ms the caller
	// reported for it at Submit time. Entries are removed once consumed (or
	// superseded) so the map never grows unbounded across a long-running
	// connection.
	pending map[uint32]float64

	onSample func(syncWaitMs float64, vramReady bool)
}

// NewTracker returns a Tracker with no snapshot yet recorded. onSample, if
// non-nil, is invoked once per ACK that advances FrameEcho past a
// previously recorded submit (feeding the health engine).
func NewTracker(onSample func(syncWaitMs float64, vramReady bool)) *Tracker {
	return &Tracker{
		pending:  make(map[uint32]float64),
		onSample: onSample,
	}
}

// NoteSubmit records the sync_wait_ms the caller reported for frame at
// submit time, so that the ACK which eventually echoes it can turn it into
// a health-engine sample.
func (t *Tracker) NoteSubmit(frame uint32, syncWaitMs float64) {
	t.pending[frame] = syncWaitMs
}

// Ingest applies one decoded ACK frame to the tracker under the
// frame_echo monotonicity rule: an ACK whose FrameEcho is smaller than the
// currently held one is discarded as stale/out-of-order. A strictly
// greater FrameEcho additionally triggers a frame-stat sample if a submit
// was recorded for it.
func (t *Tracker) Ingest(ack Ack, now time.Time) {
	if ack.FrameEcho < t.snap.FrameEcho {
		return
	}
	advanced := ack.FrameEcho > t.snap.FrameEcho

	t.snap = Snapshot{
		Frame:        ack.Frame,
		FrameEcho:    ack.FrameEcho,
		VCount:       ack.VCount,
		VCountEcho:   ack.VCountEcho,
		VRAMReady:    ack.VRAMReady,
		VRAMEndFrame: ack.VRAMEndFrame,
		VRAMSynced:   ack.VRAMSynced,
		VGAFrameskip: ack.VGAFrameskip,
		VGAVBlank:    ack.VGAVBlank,
		VGAF1:        ack.VGAF1,
		AudioActive:  ack.AudioActive,
		VRAMQueue:    ack.VRAMQueue,
		CapturedAt:   now,
	}

	if advanced {
		if syncWaitMs, ok := t.pending[ack.FrameEcho]; ok {
			if t.onSample != nil {
				t.onSample(syncWaitMs, ack.VRAMReady != 0)
			}
			delete(t.pending, ack.FrameEcho)
		}
		// Frames the FPGA will never echo (lost ACKs for stale frames)
		// should not accumulate forever; prune anything older than the
		// frame now confirmed.
		for f := range t.pending {
			if f < ack.FrameEcho {
				delete(t.pending, f)
			}
		}
	}
}

// Snapshot returns the latest known FPGA state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}
