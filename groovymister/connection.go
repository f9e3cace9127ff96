/*
NAME
  connection.go

DESCRIPTION
  connection.go implements Connection: the top-level type that owns one
  outbound UDP socket, one compression workspace, one ACK tracker, one
  health engine and one raster solver, and exposes the lifecycle described
  in spec §4.8's state machine (NEW -> READY -> TIMED -> CLOSED).

AUTHOR
  groovymister authors. Connection plays the role revid.Revid plays in the
  teacher repo: the orchestrating type that owns and wires sub-components.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package groovymister is the host-side client for the groovy protocol: it
// streams frames, audio and display-mode commands to a MiSTer FPGA over
// UDP, and ingests the reverse stream of frame acknowledgements so the
// caller can keep a host-generated raster in phase with the FPGA's
// scanout. See SPEC_FULL.md for the full component breakdown.
package groovymister

import (
	"time"

	"github.com/pkg/errors"

	"github.com/groovymister/groovymister/codec/groovylz4"
	"github.com/groovymister/groovymister/config"
	"github.com/groovymister/groovymister/protocol/groovy"
	"github.com/groovymister/groovymister/raster"
	"github.com/groovymister/groovymister/stats"
)

// state is the connection's position in the NEW/READY/TIMED/CLOSED state
// machine of spec §4.8.
type state uint8

const (
	stateNew state = iota
	stateReady
	stateTimed
	stateClosed
)

// Option configures optional Connect parameters, after the functional
// option style of container/mts.Option in the teacher repo.
type Option func(*Connection)

// WithLZ4Mode sets the BLIT compression mode; the default is config.LZ4Off.
func WithLZ4Mode(m config.LZ4Mode) Option {
	return func(c *Connection) { c.lz4Mode = m }
}

// WithLog wires a logging callback; the default discards everything.
func WithLog(l Log) Option {
	return func(c *Connection) { c.log = l }
}

// Connection owns everything described in spec §3's Connection data model:
// the outbound socket, compressor, ACK tracker, health engine and raster
// solver. It is not safe for concurrent use; per spec §5, the caller must
// serialize all access to one Connection.
type Connection struct {
	st  state
	log Log

	mtu           uint16
	lz4Mode       config.LZ4Mode
	data          *groovy.DataClient
	compressor    *groovylz4.Compressor
	tracker       *groovy.Tracker
	health        stats.Health
	solver        raster.Solver
	audioSeq      uint32
	lastFrame     uint32
	haveLastFrame bool
}

// Connect resolves host, opens the outbound UDP socket, and sends the INIT
// command. Returns an error (spec's "null handle") if the socket can't be
// created or the address can't be resolved.
func Connect(host string, mtu uint16, rgbMode config.RGBMode, soundRate config.SoundRate, soundChannels config.SoundChannels, opts ...Option) (*Connection, error) {
	c := &Connection{
		st:      stateNew,
		mtu:     mtu,
		lz4Mode: config.LZ4Off,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.compressor = groovylz4.NewCompressor(c.lz4Mode)
	c.tracker = groovy.NewTracker(func(syncWaitMs float64, vramReady bool) {
		c.health.Add(stats.Sample{SyncWaitMs: syncWaitMs, VRAMReady: vramReady, Timestamp: time.Now()})
	})

	data, err := groovy.Dial(host)
	if err != nil {
		return nil, err
	}
	c.data = data

	init := groovy.EncodeInit(mtu, uint8(rgbMode), uint8(soundRate), uint8(soundChannels), uint8(c.lz4Mode))
	if err := c.data.Send(append([]byte{groovy.CmdInit}, init...)); err != nil {
		c.data.Close()
		return nil, err
	}

	c.st = stateReady
	c.log.log(LogInfo, "connected", "host", host, "mtu", mtu)
	return c, nil
}

// Disconnect sends CLOSE and transitions to CLOSED from any state. It is
// safe to call multiple times and safe to call on a nil Connection.
func (c *Connection) Disconnect() error {
	if c == nil || c.st == stateClosed {
		return nil
	}
	err := c.data.Send(append([]byte{groovy.CmdClose}, groovy.EncodeClose()...))
	c.data.Close()
	c.st = stateClosed
	c.log.log(LogInfo, "disconnected")
	return err
}

// checkOpen returns ErrNullHandle/ErrClosed for a nil or closed Connection,
// else nil.
func (c *Connection) checkOpen() error {
	if c == nil {
		return ErrNullHandle
	}
	if c.st == stateClosed {
		return ErrClosed
	}
	return nil
}

// SetModeline sends CMD_SWITCHRES and binds m to the raster solver,
// transitioning READY -> TIMED. Calling it again while already TIMED is
// permitted and simply rebinds the modeline (e.g. on a mode change).
func (c *Connection) SetModeline(m config.Modeline) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(ErrArgument, err.Error())
	}
	if err := c.solver.SetModeline(m); err != nil {
		return errors.Wrap(ErrArgument, err.Error())
	}

	payload := groovy.EncodeSwitchres(groovy.Switchres{
		PixelClock: m.PixelClock,
		HActive:    m.HActive,
		HBegin:     m.HBegin,
		HEnd:       m.HEnd,
		HTotal:     m.HTotal,
		VActive:    m.VActive,
		VBegin:     m.VBegin,
		VEnd:       m.VEnd,
		VTotal:     m.VTotal,
		Interlaced: m.Interlaced,
	})
	if err := c.data.Send(append([]byte{groovy.CmdSwitchres}, payload...)); err != nil {
		return err
	}

	if c.st == stateReady {
		c.st = stateTimed
	}
	return nil
}

// Submit compresses (per the configured LZ4Mode) and transmits one frame's
// raw pixel bytes, chunked into MTU-sized BLIT datagrams, and records
// syncWaitMs (the caller's own measured wait for the previous cycle, per
// the original gmz_submit(..., sync_wait_ms) contract) to be folded into
// the health engine once the FPGA's ACK echoes this frame.
func (c *Connection) Submit(raw []byte, frame uint32, field uint8, vsyncLine uint16, syncWaitMs float64) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrArgument
	}
	if c.haveLastFrame && frame <= c.lastFrame {
		return errors.Wrap(ErrArgument, "frame numbers must strictly increase")
	}

	result, err := c.compressor.Compress(raw)
	if err != nil {
		return err
	}

	header := groovy.EncodeBlitHeader(frame, vsyncLine, result.LZ4Size, field)
	dgs, err := groovy.PacketizeBlit(header, result.Payload, int(c.mtu))
	if err != nil {
		return errors.Wrap(ErrArgument, err.Error())
	}
	if err := c.data.SendAll(dgs); err != nil {
		return err
	}

	c.tracker.NoteSubmit(frame, syncWaitMs)
	c.lastFrame = frame
	c.haveLastFrame = true
	return nil
}

// SubmitAudio transmits raw PCM sample bytes, chunked into MTU-sized AUDIO
// datagrams.
func (c *Connection) SubmitAudio(raw []byte) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if len(raw) == 0 {
		return ErrArgument
	}
	header := groovy.EncodeAudioHeader(uint32(len(raw)))
	dgs, err := groovy.PacketizeAudio(header, raw, int(c.mtu))
	if err != nil {
		return errors.Wrap(ErrArgument, err.Error())
	}
	return c.data.SendAll(dgs)
}

// Status is the information returned by Tick: the latest FPGA snapshot
// plus the health engine's rolling statistics, mirroring the combined
// gmz_state_t of the original C ABI.
type Status struct {
	groovy.Snapshot
	AvgSyncWaitMs    float64
	P95SyncWaitMs    float64
	VRAMReadyRate    float64
	StallThresholdMs float64
}

// Tick drains any immediately-available ACK datagrams (never blocking) and
// returns the resulting combined status.
func (c *Connection) Tick() (Status, error) {
	if err := c.checkOpen(); err != nil {
		return Status{}, err
	}
	now := time.Now()
	c.data.Drain(func(dg []byte) {
		ack, err := groovy.DecodeAck(dg)
		if err != nil {
			c.log.log(LogDebug, "dropped malformed ack", "err", err)
			return
		}
		c.tracker.Ingest(ack, now)
	})
	return c.status(), nil
}

func (c *Connection) status() Status {
	return Status{
		Snapshot:         c.tracker.Snapshot(),
		AvgSyncWaitMs:    c.health.Mean(),
		P95SyncWaitMs:    c.health.P95(),
		VRAMReadyRate:    c.health.VRAMReadyRate(),
		StallThresholdMs: stats.StallThresholdMs(c.solver.FramePeriodNs()),
	}
}

// SyncResult is the three-way outcome of WaitSync, matching the
// {0 ack, 1 timeout, -1 null} contract of the original C ABI's
// gmz_wait_sync.
type SyncResult int

// WaitSync results.
const (
	SyncAck     SyncResult = 0
	SyncTimeout SyncResult = 1
	SyncNull    SyncResult = -1
)

// WaitSync blocks for up to timeout waiting for any ACK to arrive,
// returning SyncAck if at least one was received, SyncTimeout if none
// arrived, or SyncNull if the Connection is nil or closed. This is the
// only operation in this package that blocks.
func (c *Connection) WaitSync(timeout time.Duration) SyncResult {
	if c == nil || c.st == stateClosed {
		return SyncNull
	}
	now := time.Now()
	got, err := c.data.Poll(timeout, func(dg []byte) {
		ack, derr := groovy.DecodeAck(dg)
		if derr != nil {
			return
		}
		c.tracker.Ingest(ack, now)
	})
	if err != nil || !got {
		return SyncTimeout
	}
	return SyncAck
}

// RasterOffsetNs returns the signed offset, in nanoseconds, between the
// FPGA's projected raster position and the point submittedFrame would need
// it to be at. Returns 0 if no modeline has been bound (spec §9).
func (c *Connection) RasterOffsetNs(submittedFrame uint32) int32 {
	snap := c.tracker.Snapshot()
	if snap.CapturedAt.IsZero() {
		return 0
	}
	return c.solver.RasterOffsetNs(submittedFrame, snap.VCount, snap.Frame, snap.CapturedAt, time.Now())
}

// CalcVsync computes the target scanline for the next submit. Returns the
// raster package's sentinel (262) if no modeline has been bound.
func (c *Connection) CalcVsync(marginNs, emulationNs, streamNs uint64) uint16 {
	snap := c.tracker.Snapshot()
	if snap.CapturedAt.IsZero() {
		return raster.SentinelLine
	}
	return c.solver.CalcVsync(snap.VCount, snap.Frame, snap.CapturedAt, time.Now(), marginNs, emulationNs, streamNs)
}

// FrameTimeNs returns the bound modeline's frame period in nanoseconds, or
// 0 if no modeline has been bound.
func (c *Connection) FrameTimeNs() uint64 {
	return c.solver.FramePeriodNs()
}
