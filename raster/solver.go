/*
NAME
  solver.go

DESCRIPTION
  solver.go implements the vsync-line solver: given a modeline and the last
  known FPGA raster position, it projects where the FPGA's beam will be at
  a future host time and computes a target scanline for the next submit
  plus the signed offset between a submitted frame and the FPGA's actual
  position.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package raster implements the raster/vsync solver of spec §4.6.
package raster

import (
	"time"

	"github.com/groovymister/groovymister/config"
)

// SentinelLine is returned by CalcVsync when no modeline has been bound:
// a safe mid-frame default for an assumed 525-line mode.
const SentinelLine uint16 = 262

// Solver projects FPGA raster position forward from a captured snapshot
// and computes vsync targets. A Solver with no modeline bound operates in
// reduced-fidelity mode per spec §9's Open Question on submit-before-
// set_modeline.
type Solver struct {
	modeline *config.Modeline
}

// SetModeline binds m, validating it first.
func (s *Solver) SetModeline(m config.Modeline) error {
	if err := m.Validate(); err != nil {
		return err
	}
	ml := m
	s.modeline = &ml
	return nil
}

// HasModeline reports whether a modeline has been bound.
func (s *Solver) HasModeline() bool { return s.modeline != nil }

// FramePeriodNs returns the bound modeline's frame period, or 0 if none is
// bound.
func (s *Solver) FramePeriodNs() uint64 {
	if s.modeline == nil {
		return 0
	}
	return s.modeline.FramePeriodNs()
}

// projected returns the projected (line, frame-offset) the FPGA's beam has
// reached elapsed time after a snapshot captured at vcount/frame.
func (s *Solver) projected(vcount uint16, frame uint32, elapsed time.Duration) (line float64, frameOffset int64) {
	lineTimeNs := s.modeline.LineTimeNs()
	if lineTimeNs <= 0 {
		return 0, 0
	}
	linesElapsed := float64(elapsed) / lineTimeNs
	total := float64(vcount) + linesElapsed
	vTotal := float64(s.modeline.VTotal)

	frameOffset = int64(total / vTotal)
	line = total - float64(frameOffset)*vTotal
	if line < 0 {
		// total/vTotal truncation can undershoot for negative elapsed
		// durations (a snapshot captured slightly in the future); normalise
		// into [0, vTotal).
		frameOffset--
		line += vTotal
	}
	return line, frameOffset
}

// RasterOffsetNs returns the signed offset, in nanoseconds, between where
// submittedFrame would need the FPGA to be (i.e. the submit point) and
// where the FPGA's beam is projected to actually be at now, given the
// snapshot captured at t0. Positive means the FPGA has not yet reached the
// submit point (host is early/safe); negative means the host missed it.
//
// Returns 0 if no modeline is bound, per spec §9.
func (s *Solver) RasterOffsetNs(submittedFrame uint32, vcount uint16, frame uint32, t0, now time.Time) int32 {
	if s.modeline == nil {
		return 0
	}
	framePeriodNs := float64(s.modeline.FramePeriodNs())
	lineTimeNs := s.modeline.LineTimeNs()

	line, frameOffset := s.projected(vcount, frame, now.Sub(t0))
	projectedFrame := int64(frame) + frameOffset

	offsetNs := (float64(int64(submittedFrame)-projectedFrame))*framePeriodNs + (0-line)*lineTimeNs
	return int32(offsetNs)
}

// CalcVsync chooses the target scanline L in [0, v_total) at which the
// FPGA should latch the next frame, such that it arrives at L at least
// marginNs after the host finishes transmitting (accounting for
// emulationNs of emulation-core work and streamNs of network/transmit
// time). Returns SentinelLine if no modeline is bound.
func (s *Solver) CalcVsync(vcount uint16, frame uint32, t0, now time.Time, marginNs, emulationNs, streamNs uint64) uint16 {
	if s.modeline == nil {
		return SentinelLine
	}
	lineTimeNs := s.modeline.LineTimeNs()
	if lineTimeNs <= 0 {
		return SentinelLine
	}
	vTotal := uint16(s.modeline.VTotal)

	line, _ := s.projected(vcount, frame, now.Sub(t0))
	budgetNs := line*lineTimeNs + float64(emulationNs) + float64(streamNs) + float64(marginNs)

	target := budgetNs / lineTimeNs
	l := int64(target)
	if float64(l) < target {
		l++ // ceiling, matching spec's "at least margin_ns after" requirement
	}
	return uint16(((l % int64(vTotal)) + int64(vTotal)) % int64(vTotal))
}
