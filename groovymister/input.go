/*
NAME
  input.go

DESCRIPTION
  input.go implements InputHandle: the receive-only counterpart of
  Connection that binds the FPGA's input telemetry socket and exposes the
  latest joystick/PS2 state per spec §4.8's input channel, deduplicating
  packets on the (frame, order) key with wraparound-safe comparison.

AUTHOR
  groovymister authors, after protocol/rtp.Client's setSequence sequence-
  number wraparound handling.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovymister

import (
	"github.com/groovymister/groovymister/protocol/groovy"
)

// InputHandle owns the bound input socket and the latest decoded joystick
// and PS2 state for up to four players, keyed by controller index.
type InputHandle struct {
	conn *groovy.InputClient
	log  Log

	joy [4]joyEntry
	ps2 ps2Entry
}

type joyEntry struct {
	have  bool
	state groovy.JoyState
}

type ps2Entry struct {
	have  bool
	state groovy.PS2State
}

// BindInput opens the input socket and requests streaming from host.
func BindInput(host string, opts ...Option) (*InputHandle, error) {
	c := &Connection{}
	for _, opt := range opts {
		opt(c)
	}
	conn, err := groovy.BindInput(host)
	if err != nil {
		return nil, err
	}
	return &InputHandle{conn: conn, log: c.log}, nil
}

// Close releases the bound socket.
func (h *InputHandle) Close() error {
	if h == nil || h.conn == nil {
		return nil
	}
	return h.conn.Close()
}

// Poll drains every immediately-available input datagram and folds it into
// the latest per-controller state. It never blocks.
func (h *InputHandle) Poll() error {
	if h == nil {
		return ErrNullHandle
	}
	return h.conn.Drain(func(dg []byte) {
		switch len(dg) {
		case groovy.JoySize:
			h.applyJoy(dg)
		case groovy.PS2Size:
			h.applyPS2(dg)
		default:
			h.log.log(LogDebug, "dropped input datagram of unexpected size", "len", len(dg))
		}
	})
}

func (h *InputHandle) applyJoy(dg []byte) {
	st, err := groovy.DecodeJoy(dg)
	if err != nil {
		return
	}
	if int(st.Index) >= len(h.joy) {
		return
	}
	e := &h.joy[st.Index]
	if e.have && !sequenceAdvanced(e.state.Frame, e.state.Order, st.Frame, st.Order) {
		return
	}
	e.have = true
	e.state = st
}

func (h *InputHandle) applyPS2(dg []byte) {
	st, err := groovy.DecodePS2(dg)
	if err != nil {
		return
	}
	if h.ps2.have && !sequenceAdvanced(h.ps2.state.Frame, h.ps2.state.Order, st.Frame, st.Order) {
		return
	}
	h.ps2.have = true
	h.ps2.state = st
}

// sequenceAdvanced reports whether (newFrame, newOrder) is strictly newer
// than (oldFrame, oldOrder), comparing frame as a wraparound-safe signed
// difference (after protocol/rtp.Client's sequence-number handling) and
// falling back to order within the same frame.
func sequenceAdvanced(oldFrame, oldOrder, newFrame, newOrder uint32) bool {
	diff := int32(newFrame - oldFrame)
	if diff > 0 {
		return true
	}
	if diff < 0 {
		return false
	}
	return int32(newOrder-oldOrder) > 0
}

// Joy returns the latest known joystick state for the given controller
// index (0-3) and whether any packet has been received for it yet.
func (h *InputHandle) Joy(index int) (groovy.JoyState, bool) {
	if h == nil || index < 0 || index >= len(h.joy) {
		return groovy.JoyState{}, false
	}
	e := h.joy[index]
	return e.state, e.have
}

// PS2 returns the latest known PS2 (keyboard/mouse) state and whether any
// packet has been received yet.
func (h *InputHandle) PS2() (groovy.PS2State, bool) {
	if h == nil {
		return groovy.PS2State{}, false
	}
	return h.ps2.state, h.ps2.have
}
