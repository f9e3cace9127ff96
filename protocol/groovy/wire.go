/*
NAME
  wire.go

DESCRIPTION
  wire.go implements the groovy wire codec: little-endian encoding of the
  five commands (INIT, SWITCHRES, BLIT, AUDIO, CLOSE), and decoding of the
  41-byte ACK frame and the joystick/PS2 input packets.

AUTHOR
  groovymister authors, after the pattern of protocol/rtp/rtp.go and
  protocol/rtcp/parse.go.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

// Package groovy implements the wire codec and UDP transport of the groovy
// protocol used to stream frames, audio and commands to a MiSTer FPGA and to
// ingest its ACK and input telemetry.
package groovy

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Command identifiers, one byte, first byte of every outbound datagram.
const (
	CmdInit      byte = 1
	CmdSwitchres byte = 2
	CmdBlit      byte = 3
	CmdAudio     byte = 4
	CmdClose     byte = 5
)

// Fixed sizes of the wire structures.
const (
	// AckSize is the size in bytes of one ACK datagram.
	AckSize = 41
	// JoySize is the size in bytes of one joystick input packet.
	JoySize = 24
	// PS2Size is the size in bytes of one PS/2 (keyboard/mouse) input packet.
	PS2Size = 48

	initPayloadSize      = 6
	switchresPayloadSize = 8 + 8*2 + 1
	blitHeaderSize       = 4 + 2 + 4 + 1
	audioHeaderSize      = 4
)

// ErrShortPacket is returned (and otherwise swallowed as noise per the
// transport's best-effort contract) when a datagram is too small to hold
// the structure it claims to be.
var ErrShortPacket = errors.New("groovy: short packet")

// ErrUnknownCommand is returned when decoding a command byte this codec
// does not recognise.
var ErrUnknownCommand = errors.New("groovy: unknown command")

// EncodeInit encodes a CmdInit payload (without the leading command byte;
// the caller prefixes that).
func EncodeInit(mtu uint16, rgbMode, soundRate, soundChannels, lz4Mode uint8) []byte {
	buf := make([]byte, initPayloadSize)
	binary.LittleEndian.PutUint16(buf[0:2], mtu)
	buf[2] = rgbMode
	buf[3] = soundRate
	buf[4] = soundChannels
	buf[5] = lz4Mode
	return buf
}

// Init is the decoded CmdInit payload, used for round-trip tests and by
// anything wishing to inspect a captured INIT datagram.
type Init struct {
	MTU           uint16
	RGBMode       uint8
	SoundRate     uint8
	SoundChannels uint8
	LZ4Mode       uint8
}

// DecodeInit decodes a CmdInit payload.
func DecodeInit(b []byte) (Init, error) {
	if len(b) < initPayloadSize {
		return Init{}, ErrShortPacket
	}
	return Init{
		MTU:           binary.LittleEndian.Uint16(b[0:2]),
		RGBMode:       b[2],
		SoundRate:     b[3],
		SoundChannels: b[4],
		LZ4Mode:       b[5],
	}, nil
}

// Switchres carries the SWITCHRES command's fields in wire order. The
// interlaced flag trails the struct as a bare u8 with no padding, matching
// the FPGA's expectation rather than the C struct's natural-alignment
// padding (see the Open Question in the design notes).
type Switchres struct {
	PixelClock float64
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

// EncodeSwitchres encodes a CmdSwitchres payload.
func EncodeSwitchres(s Switchres) []byte {
	buf := make([]byte, switchresPayloadSize)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(s.PixelClock))
	binary.LittleEndian.PutUint16(buf[8:10], s.HActive)
	binary.LittleEndian.PutUint16(buf[10:12], s.HBegin)
	binary.LittleEndian.PutUint16(buf[12:14], s.HEnd)
	binary.LittleEndian.PutUint16(buf[14:16], s.HTotal)
	binary.LittleEndian.PutUint16(buf[16:18], s.VActive)
	binary.LittleEndian.PutUint16(buf[18:20], s.VBegin)
	binary.LittleEndian.PutUint16(buf[20:22], s.VEnd)
	binary.LittleEndian.PutUint16(buf[22:24], s.VTotal)
	buf[24] = boolByte(s.Interlaced)
	return buf
}

// DecodeSwitchres decodes a CmdSwitchres payload.
func DecodeSwitchres(b []byte) (Switchres, error) {
	if len(b) < switchresPayloadSize {
		return Switchres{}, ErrShortPacket
	}
	return Switchres{
		PixelClock: math.Float64frombits(binary.LittleEndian.Uint64(b[0:8])),
		HActive:    binary.LittleEndian.Uint16(b[8:10]),
		HBegin:     binary.LittleEndian.Uint16(b[10:12]),
		HEnd:       binary.LittleEndian.Uint16(b[12:14]),
		HTotal:     binary.LittleEndian.Uint16(b[14:16]),
		VActive:    binary.LittleEndian.Uint16(b[16:18]),
		VBegin:     binary.LittleEndian.Uint16(b[18:20]),
		VEnd:       binary.LittleEndian.Uint16(b[20:22]),
		VTotal:     binary.LittleEndian.Uint16(b[22:24]),
		Interlaced: b[24] != 0,
	}, nil
}

// EncodeBlitHeader encodes the fixed portion of a BLIT command: the frame
// number, target vsync line, compressed size (0 if uncompressed) and field
// parity. The chunked payload bytes follow this header in the packetizer's
// stream and are not part of this function's return value.
func EncodeBlitHeader(frame uint32, vsyncLine uint16, lz4Size uint32, field uint8) []byte {
	buf := make([]byte, blitHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], frame)
	binary.LittleEndian.PutUint16(buf[4:6], vsyncLine)
	binary.LittleEndian.PutUint32(buf[6:10], lz4Size)
	buf[10] = field
	return buf
}

// BlitHeader is the decoded fixed portion of a BLIT command.
type BlitHeader struct {
	Frame     uint32
	VsyncLine uint16
	LZ4Size   uint32
	Field     uint8
}

// DecodeBlitHeader decodes the fixed portion of a BLIT command.
func DecodeBlitHeader(b []byte) (BlitHeader, error) {
	if len(b) < blitHeaderSize {
		return BlitHeader{}, ErrShortPacket
	}
	return BlitHeader{
		Frame:     binary.LittleEndian.Uint32(b[0:4]),
		VsyncLine: binary.LittleEndian.Uint16(b[4:6]),
		LZ4Size:   binary.LittleEndian.Uint32(b[6:10]),
		Field:     b[10],
	}, nil
}

// EncodeAudioHeader encodes the fixed portion of an AUDIO command: the
// number of PCM sample bytes that follow (across one or more chunks).
func EncodeAudioHeader(sampleBytes uint32) []byte {
	buf := make([]byte, audioHeaderSize)
	binary.LittleEndian.PutUint32(buf, sampleBytes)
	return buf
}

// DecodeAudioHeader decodes the fixed portion of an AUDIO command.
func DecodeAudioHeader(b []byte) (uint32, error) {
	if len(b) < audioHeaderSize {
		return 0, ErrShortPacket
	}
	return binary.LittleEndian.Uint32(b[0:4]), nil
}

// EncodeClose encodes the (empty) CmdClose payload.
func EncodeClose() []byte { return nil }

// Ack is the decoded 41-byte ACK datagram described in spec §6. Bytes
// 20..40 are reserved by the protocol for future telemetry and are ignored.
type Ack struct {
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
}

// DecodeAck decodes a 41-byte ACK datagram. A short datagram returns
// ErrShortPacket; per the protocol's best-effort contract, callers are
// expected to drop such packets silently rather than propagate the error.
func DecodeAck(b []byte) (Ack, error) {
	if len(b) < AckSize {
		return Ack{}, ErrShortPacket
	}
	return Ack{
		Frame:        binary.LittleEndian.Uint32(b[0:4]),
		FrameEcho:    binary.LittleEndian.Uint32(b[4:8]),
		VCount:       binary.LittleEndian.Uint16(b[8:10]),
		VCountEcho:   binary.LittleEndian.Uint16(b[10:12]),
		VRAMReady:    b[12],
		VRAMEndFrame: b[13],
		VRAMSynced:   b[14],
		VGAFrameskip: b[15],
		VGAVBlank:    b[16],
		VGAF1:        b[17],
		AudioActive:  b[18],
		VRAMQueue:    b[19],
	}, nil
}

// Bytes re-encodes a, for round-trip testing and for anyone wishing to
// synthesize ACK frames (e.g. a test harness standing in for the FPGA).
// Reserved bytes 20..40 are zeroed.
func (a Ack) Bytes() []byte {
	buf := make([]byte, AckSize)
	binary.LittleEndian.PutUint32(buf[0:4], a.Frame)
	binary.LittleEndian.PutUint32(buf[4:8], a.FrameEcho)
	binary.LittleEndian.PutUint16(buf[8:10], a.VCount)
	binary.LittleEndian.PutUint16(buf[10:12], a.VCountEcho)
	buf[12] = a.VRAMReady
	buf[13] = a.VRAMEndFrame
	buf[14] = a.VRAMSynced
	buf[15] = a.VGAFrameskip
	buf[16] = a.VGAVBlank
	buf[17] = a.VGAF1
	buf[18] = a.AudioActive
	buf[19] = a.VRAMQueue
	return buf
}

// JoyState is the decoded 24-byte joystick input packet: a digital bitmask
// (see the Joy* bit constants) plus four signed analog axes, and the
// (frame, order) dedup key.
type JoyState struct {
	Frame   uint32
	Order   uint32
	Index   uint8
	Digital uint16
	LX, LY  int8
	RX, RY  int8
}

// Joystick digital bit constants, exactly as declared in spec §6.
const (
	JoyRight uint16 = 0x1
	JoyLeft  uint16 = 0x2
	JoyDown  uint16 = 0x4
	JoyUp    uint16 = 0x8
	JoyB1    uint16 = 0x10
	JoyB2    uint16 = 0x20
	JoyB3    uint16 = 0x40
	JoyB4    uint16 = 0x80
	JoyB5    uint16 = 0x100
	JoyB6    uint16 = 0x200
	JoyB7    uint16 = 0x400
	JoyB8    uint16 = 0x800
	JoyB9    uint16 = 0x1000
	JoyB10   uint16 = 0x2000
)

// DecodeJoy decodes a 24-byte joystick packet.
func DecodeJoy(b []byte) (JoyState, error) {
	if len(b) < JoySize {
		return JoyState{}, ErrShortPacket
	}
	return JoyState{
		Frame:   binary.LittleEndian.Uint32(b[0:4]),
		Order:   binary.LittleEndian.Uint32(b[4:8]),
		Index:   b[8],
		Digital: binary.LittleEndian.Uint16(b[10:12]),
		LX:      int8(b[12]),
		LY:      int8(b[13]),
		RX:      int8(b[14]),
		RY:      int8(b[15]),
	}, nil
}

// PS2Kind distinguishes a keyboard event from a mouse event within a PS2
// packet.
type PS2Kind uint8

// Kinds of PS2 packet.
const (
	PS2Keyboard PS2Kind = 0
	PS2Mouse    PS2Kind = 1
)

// PS2State is the decoded 48-byte PS/2 input packet, covering both keyboard
// scancodes and mouse motion/buttons, plus the (frame, order) dedup key.
type PS2State struct {
	Frame uint32
	Order uint32
	Kind  PS2Kind

	KeyCode    uint16
	KeyPressed bool

	MouseDX, MouseDY int16
	MouseButtons     uint8
}

// DecodePS2 decodes a 48-byte PS/2 packet.
func DecodePS2(b []byte) (PS2State, error) {
	if len(b) < PS2Size {
		return PS2State{}, ErrShortPacket
	}
	return PS2State{
		Frame:        binary.LittleEndian.Uint32(b[0:4]),
		Order:        binary.LittleEndian.Uint32(b[4:8]),
		Kind:         PS2Kind(b[8]),
		KeyCode:      binary.LittleEndian.Uint16(b[12:14]),
		KeyPressed:   b[14] != 0,
		MouseDX:      int16(binary.LittleEndian.Uint16(b[16:18])),
		MouseDY:      int16(binary.LittleEndian.Uint16(b[18:20])),
		MouseButtons: b[20],
	}, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
