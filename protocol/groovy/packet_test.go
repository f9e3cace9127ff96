/*
NAME
  packet_test.go

DESCRIPTION
  packet_test.go tests the MTU packetizer's chunk boundaries, ordinal
  sequencing, and the oversized-header error path.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketizeSingleDatagram(t *testing.T) {
	header := []byte{1, 2, 3}
	payload := []byte{4, 5, 6, 7}
	dgs, err := Packetize(CmdBlit, cmdBlitChunk, header, payload, 64)
	require.NoError(t, err)
	require.Len(t, dgs, 1)

	want := append([]byte{CmdBlit}, append(header, payload...)...)
	assert.True(t, bytes.Equal(want, dgs[0]))
}

func TestPacketizeMultipleChunks(t *testing.T) {
	header := []byte{0, 0, 0, 0}
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}
	// mtu=10: first dg holds cmd(1)+header(4)+5 payload bytes=10; remaining
	// 15 bytes chunked at 8 bytes/datagram (mtu - chunkCmd - ordinal).
	dgs, err := Packetize(CmdBlit, cmdBlitChunk, header, payload, 10)
	require.NoError(t, err)
	require.True(t, len(dgs) > 1)

	assert.Equal(t, CmdBlit, dgs[0][0])
	for i, dg := range dgs[1:] {
		ordinal, isChunk := IsChunk(dg)
		require.True(t, isChunk)
		assert.EqualValues(t, i, ordinal)
	}

	// Reassemble and check against the original payload.
	var got []byte
	got = append(got, dgs[0][1+len(header):]...)
	for _, dg := range dgs[1:] {
		got = append(got, dg[2:]...)
	}
	assert.True(t, bytes.Equal(payload, got))
}

// TestPacketizeMtuBoundary pins the MTU boundary: a payload that exactly
// fills the first datagram's remaining room produces a single datagram, and
// one byte more produces two datagrams, the second being the first (and
// only) continuation chunk, with ordinal 0.
func TestPacketizeMtuBoundary(t *testing.T) {
	header := []byte{0, 0, 0, 0}
	const mtu = 20
	room := mtu - 1 - len(header) // cmd byte + header leave this much room

	exact := make([]byte, room)
	dgs, err := Packetize(CmdBlit, cmdBlitChunk, header, exact, mtu)
	require.NoError(t, err)
	assert.Len(t, dgs, 1)

	overByOne := make([]byte, room+1)
	dgs, err = Packetize(CmdBlit, cmdBlitChunk, header, overByOne, mtu)
	require.NoError(t, err)
	require.Len(t, dgs, 2)
	ordinal, isChunk := IsChunk(dgs[1])
	require.True(t, isChunk)
	assert.EqualValues(t, 0, ordinal)
}

func TestPacketizeOversizedHeader(t *testing.T) {
	_, err := Packetize(CmdBlit, cmdBlitChunk, make([]byte, 20), nil, 10)
	assert.ErrorIs(t, err, ErrOversizedPayload)
}

func TestIsChunkRejectsNonChunk(t *testing.T) {
	_, isChunk := IsChunk([]byte{CmdBlit, 0, 1, 2})
	assert.False(t, isChunk)
}

func TestIsChunkShortDatagram(t *testing.T) {
	_, isChunk := IsChunk([]byte{cmdBlitChunk})
	assert.False(t, isChunk)
}
