/*
NAME
  packet.go

DESCRIPTION
  packet.go implements the packetizer: it slices a (header || body) stream
  into MTU-sized datagrams, each carrying a command id and, for BLIT/AUDIO,
  a continuation id plus a one-byte chunk ordinal.

AUTHOR
  groovymister authors, after the buffer-then-slice loop of
  protocol/rtp/encoder.go.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovy

import "github.com/pkg/errors"

// Continuation command ids used for chunks after the first datagram of a
// multi-chunk BLIT or AUDIO transfer. The first datagram of each carries
// CmdBlit/CmdAudio itself, followed directly by the command header (no
// ordinal byte).
const (
	cmdBlitChunk  byte = 0x83 // CmdBlit | 0x80
	cmdAudioChunk byte = 0x84 // CmdAudio | 0x80
)

// ErrOversizedPayload is returned when a single command's fixed header
// already exceeds the configured MTU, which can never be chunked.
var ErrOversizedPayload = errors.New("groovy: header larger than mtu")

// Packetize slices payload (a command's body, e.g. the possibly-compressed
// BLIT pixel bytes or AUDIO PCM bytes) into datagrams of at most mtu bytes.
//
// The first datagram is [cmd, header..., payload[0:n]]; each subsequent
// datagram is [chunkCmd, ordinal, payload[n:n+m]]. Ordinals begin at 0 and
// increment per chunk of the same frame/audio-sequence; the total chunk
// count is implied by the advertised payload size (lz4_size/sample_bytes),
// not transmitted separately.
func Packetize(cmd byte, chunkCmd byte, header, payload []byte, mtu int) ([][]byte, error) {
	if len(header)+1 > mtu {
		return nil, ErrOversizedPayload
	}

	first := make([]byte, 0, mtu)
	first = append(first, cmd)
	first = append(first, header...)

	room := mtu - len(first)
	if room < 0 {
		room = 0
	}
	n := room
	if n > len(payload) {
		n = len(payload)
	}
	first = append(first, payload[:n]...)

	datagrams := [][]byte{first}
	rest := payload[n:]

	const chunkHeaderSize = 2 // chunkCmd + ordinal
	chunkRoom := mtu - chunkHeaderSize
	if chunkRoom <= 0 {
		return nil, ErrOversizedPayload
	}

	var ordinal uint8
	for len(rest) > 0 {
		m := chunkRoom
		if m > len(rest) {
			m = len(rest)
		}
		dg := make([]byte, 0, mtu)
		dg = append(dg, chunkCmd, ordinal)
		dg = append(dg, rest[:m]...)
		datagrams = append(datagrams, dg)
		rest = rest[m:]
		ordinal++
	}

	return datagrams, nil
}

// PacketizeBlit packetizes a BLIT command: header is the fixed 11-byte
// EncodeBlitHeader output, payload is the (possibly compressed) frame.
func PacketizeBlit(header, payload []byte, mtu int) ([][]byte, error) {
	return Packetize(CmdBlit, cmdBlitChunk, header, payload, mtu)
}

// PacketizeAudio packetizes an AUDIO command: header is the fixed 4-byte
// EncodeAudioHeader output, payload is the raw PCM sample bytes.
func PacketizeAudio(header, payload []byte, mtu int) ([][]byte, error) {
	return Packetize(CmdAudio, cmdAudioChunk, header, payload, mtu)
}

// IsChunk reports whether the first byte of a datagram is a continuation
// chunk (as opposed to the start of a new command), and returns the ordinal
// when it is.
func IsChunk(dg []byte) (ordinal uint8, isChunk bool) {
	if len(dg) < 2 {
		return 0, false
	}
	switch dg[0] {
	case cmdBlitChunk, cmdAudioChunk:
		return dg[1], true
	default:
		return 0, false
	}
}
