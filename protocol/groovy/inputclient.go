/*
NAME
  inputclient.go

DESCRIPTION
  inputclient.go implements the input socket: a locally bound UDP socket
  that receives joystick/PS2 telemetry, after sending a one-byte hello to
  FPGA:32101 to request the stream.

AUTHOR
  groovymister authors, after protocol/rtp/client.go's NewClient.

LICENSE
  Copyright (C) 2026 the groovymister authors.

  This source code is licensed under the MIT license found in the
  LICENSE file in the root directory of this source tree.
*/

package groovy

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// InputPort is the FPGA's input telemetry UDP port.
const InputPort = 32101

// helloByte is the single byte sent to FPGA:32101 to request streaming.
const helloByte = 0x01

// InputClient owns the bound UDP socket used to receive joystick and PS2
// packets from the FPGA.
type InputClient struct {
	conn *net.UDPConn
	buf  [MaxDatagram]byte
}

// BindInput opens a local UDP socket, resolves the FPGA's input port and
// sends the hello byte to request streaming.
func BindInput(host string) (*InputClient, error) {
	local, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, errors.Wrap(err, "groovy: bind input socket")
	}

	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(InputPort)))
	if err != nil {
		local.Close()
		return nil, errors.Wrap(err, "groovy: resolve input addr")
	}

	if _, err := local.WriteToUDP([]byte{helloByte}, raddr); err != nil {
		local.Close()
		return nil, errors.Wrap(err, "groovy: send input hello")
	}

	return &InputClient{conn: local}, nil
}

// Drain non-blockingly reads and hands off every immediately-available
// datagram to fn.
func (c *InputClient) Drain(fn func(dg []byte)) error {
	for {
		if err := c.conn.SetReadDeadline(time.Now()); err != nil {
			return errors.Wrap(err, "groovy: set read deadline")
		}
		n, _, err := c.conn.ReadFromUDP(c.buf[:])
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return nil
		}
		fn(c.buf[:n])
	}
}

// Close closes the bound socket.
func (c *InputClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
