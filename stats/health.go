/*
NAME
  health.go

DESCRIPTION
  health.go implements the rolling health statistics engine: a 128-entry
  ring of sync-wait/VRAM-ready samples, producing mean and p95 sync-wait,
  an exponentially-updated VRAM-ready rate, and a stall threshold derived
  from the frame period.

AUTHOR
  groovymister authors. Ring storage is after the fixed-array ring style of
  _examples/jbrzusto-ogdar/buffer/buffer.go; the mean uses
  gonum.org/v1/gonum/stat, as already exercised by cmd/rv/probe.go in the
  teacher repo, and the p95 is a nearest-rank lookup in a sorted copy.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package stats implements the connection health engine described in
// spec §4.7: a rolling ring of per-frame sync-wait samples plus a VRAM
// readiness rate, read only by the caller and written only from tick/submit.
package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RingSize is the number of most-recent samples retained.
const RingSize = 128

// defaultFramePeriodMs is used for the stall threshold when no modeline has
// been bound yet (approximately one NTSC frame).
const defaultFramePeriodMs = 16.7

// stallMultiple is the factor applied to the frame period to derive the
// stall threshold.
const stallMultiple = 1.5

// vramEMAWeight is the smoothing factor for the exponentially-updated
// VRAM-ready rate; chosen so roughly the last RingSize samples dominate.
const vramEMAWeight = 1.0 / RingSize

// Sample is one FrameStats entry: the sync-wait time in ms recorded for a
// frame (the value the caller passed to Submit for it), and whether the
// FPGA's VRAM was ready to accept another BLIT when its ACK arrived.
type Sample struct {
	SyncWaitMs float64
	VRAMReady  bool
	Timestamp  time.Time
}

// Health is a rolling 128-entry ring of Samples plus a vram-ready rate.
// It has no internal synchronization: per spec §5 the owning Connection is
// exclusively accessed by one caller at a time.
type Health struct {
	ring  [RingSize]Sample
	next  int
	count int

	vramRate    float64
	vramRateSet bool
}

// Add records one sample, overwriting the oldest entry once the ring is
// full, and updates the exponentially-weighted VRAM-ready rate.
func (h *Health) Add(s Sample) {
	h.ring[h.next] = s
	h.next = (h.next + 1) % RingSize
	if h.count < RingSize {
		h.count++
	}

	bit := 0.0
	if s.VRAMReady {
		bit = 1.0
	}
	if !h.vramRateSet {
		h.vramRate = bit
		h.vramRateSet = true
	} else {
		h.vramRate = h.vramRate + vramEMAWeight*(bit-h.vramRate)
	}
}

// Count returns the number of valid samples currently held (min(n, 128)).
func (h *Health) Count() int { return h.count }

// samples returns the valid sync-wait values in insertion order, oldest
// first, without allocating more than needed for the current count.
func (h *Health) samples() []float64 {
	out := make([]float64, h.count)
	start := (h.next - h.count + RingSize) % RingSize
	for i := 0; i < h.count; i++ {
		out[i] = h.ring[(start+i)%RingSize].SyncWaitMs
	}
	return out
}

// Mean returns the arithmetic mean sync-wait time in ms. Defined only when
// Count() > 0; returns 0 otherwise.
func (h *Health) Mean() float64 {
	if h.count == 0 {
		return 0
	}
	return stat.Mean(h.samples(), nil)
}

// P95 returns the 95th-percentile sync-wait time in ms: the value at index
// ceil(0.95*n)-1 of the sorted samples. Defined only when Count() > 0.
func (h *Health) P95() float64 {
	if h.count == 0 {
		return 0
	}
	xs := h.samples()
	sort.Float64s(xs)
	idx := int((0.95*float64(h.count))+0.9999999) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= h.count {
		idx = h.count - 1
	}
	return xs[idx]
}

// VRAMReadyRate returns the exponentially-updated fraction of recent
// samples whose VRAMReady bit was set. 0 if no sample has ever been added.
func (h *Health) VRAMReadyRate() float64 {
	if !h.vramRateSet {
		return 0
	}
	return h.vramRate
}

// StallThresholdMs returns 1.5x the frame period in ms, or a default of
// 16.7ms (approximately one NTSC frame) when framePeriodNs is 0, i.e. no
// modeline has been bound yet.
func StallThresholdMs(framePeriodNs uint64) float64 {
	if framePeriodNs == 0 {
		return defaultFramePeriodMs
	}
	periodMs := float64(framePeriodNs) / float64(time.Millisecond)
	return stallMultiple * periodMs
}
