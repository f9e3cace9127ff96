/*
NAME
  modeline.go

DESCRIPTION
  modeline.go defines the Modeline type: the display timing description
  used by the raster solver and sent to the FPGA via the SWITCHRES command.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package config

import "fmt"

// Modeline is an immutable display timing description: a pixel clock plus
// the horizontal and vertical sync/total counts that define one frame (or,
// when Interlaced, one field pair) of FPGA scanout.
//
// Invariants: HTotal >= HActive, VTotal >= VActive, PixelClock > 0. Validate
// checks these and is called by anything that accepts a caller-supplied
// Modeline.
type Modeline struct {
	PixelClock float64 // MHz.
	HActive    uint16
	HBegin     uint16
	HEnd       uint16
	HTotal     uint16
	VActive    uint16
	VBegin     uint16
	VEnd       uint16
	VTotal     uint16
	Interlaced bool
}

// Validate reports an error if m violates any of the Modeline invariants.
func (m Modeline) Validate() error {
	if m.PixelClock <= 0 {
		return fmt.Errorf("config: pixel clock must be > 0, got %v", m.PixelClock)
	}
	if m.HTotal < m.HActive {
		return fmt.Errorf("config: h_total (%d) < h_active (%d)", m.HTotal, m.HActive)
	}
	if m.VTotal < m.VActive {
		return fmt.Errorf("config: v_total (%d) < v_active (%d)", m.VTotal, m.VActive)
	}
	return nil
}

// FramePeriodNs returns the duration of one full frame in nanoseconds:
// (h_total * v_total / pixel_clock) * 1000. Interlaced fields halve the
// vertical line count scanned per field, but not the frame period itself.
func (m Modeline) FramePeriodNs() uint64 {
	if m.PixelClock <= 0 {
		return 0
	}
	periodNs := float64(m.HTotal) * float64(m.VTotal) * 1000.0 / m.PixelClock
	return uint64(periodNs + 0.5)
}

// LineTimeNs returns the duration of a single scanline in nanoseconds.
func (m Modeline) LineTimeNs() float64 {
	if m.VTotal == 0 {
		return 0
	}
	return float64(m.FramePeriodNs()) / float64(m.VTotal)
}
