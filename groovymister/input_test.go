/*
NAME
  input_test.go

DESCRIPTION
  input_test.go exercises InputHandle end-to-end: the hello handshake and
  spec scenario 6's joystick (frame, order) dedup rule.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovymister

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovymister/groovymister/protocol/groovy"
)

func newMockInputFPGA(t *testing.T) *net.UDPConn {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:32101")
	require.NoError(t, err)
	conn, err := net.ListenUDP("udp", addr)
	require.NoError(t, err)
	return conn
}

// awaitHello reads the one-byte hello BindInput sends and returns its
// sender, the address later input packets are written to.
func awaitHello(t *testing.T, conn *net.UDPConn) *net.UDPAddr {
	t.Helper()
	buf := make([]byte, 8)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, peer, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return peer
}

func encodeJoy(frame, order uint32, index uint8, digital uint16) []byte {
	buf := make([]byte, groovy.JoySize)
	binary.LittleEndian.PutUint32(buf[0:4], frame)
	binary.LittleEndian.PutUint32(buf[4:8], order)
	buf[8] = index
	binary.LittleEndian.PutUint16(buf[10:12], digital)
	return buf
}

// TestInputJoyOrderDedup reproduces spec scenario 6: a (frame=7, order=2)
// packet carrying 0x0011 followed by a stale (frame=7, order=1) packet
// carrying 0x00FF must leave 0x0011 in effect.
func TestInputJoyOrderDedup(t *testing.T) {
	fpga := newMockInputFPGA(t)
	defer fpga.Close()

	h, err := BindInput("127.0.0.1")
	require.NoError(t, err)
	defer h.Close()
	peer := awaitHello(t, fpga)

	_, err = fpga.WriteToUDP(encodeJoy(7, 2, 0, 0x0011), peer)
	require.NoError(t, err)
	_, err = fpga.WriteToUDP(encodeJoy(7, 1, 0, 0x00ff), peer)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		require.NoError(t, h.Poll())
		st, ok := h.Joy(0)
		return ok && st.Digital == 0x0011
	}, 2*time.Second, 10*time.Millisecond)
}

func TestInputJoyUnknownIndexIgnored(t *testing.T) {
	fpga := newMockInputFPGA(t)
	defer fpga.Close()

	h, err := BindInput("127.0.0.1")
	require.NoError(t, err)
	defer h.Close()
	peer := awaitHello(t, fpga)

	_, err = fpga.WriteToUDP(encodeJoy(1, 1, 200, 0x1), peer)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, h.Poll())

	_, ok := h.Joy(200 % 4)
	assert.False(t, ok)
}

func TestInputJoyNoPacketYet(t *testing.T) {
	fpga := newMockInputFPGA(t)
	defer fpga.Close()

	h, err := BindInput("127.0.0.1")
	require.NoError(t, err)
	defer h.Close()
	awaitHello(t, fpga)

	_, ok := h.Joy(0)
	assert.False(t, ok)
	_, ok = h.PS2()
	assert.False(t, ok)
}
