/*
NAME
  client.go

DESCRIPTION
  client.go implements the outbound data/command UDP socket: an unbound
  client dialed at the FPGA's control port that sends BLIT/AUDIO/INIT/
  SWITCHRES/CLOSE datagrams and, with SetReadDeadline tricks borrowed from
  protocol/rtp.PacketReader, non-blockingly drains queued ACK datagrams.

AUTHOR
  groovymister authors, after protocol/rtp/client.go's PacketReader.

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

// ControlPort is the FPGA's data/command UDP port.
const ControlPort = 32100

// MaxDatagram is a generous upper bound on a single UDP receive buffer;
// ACKs are far smaller (41 bytes) but a defensive caller-independent size
// avoids truncating any future telemetry extension.
const MaxDatagram = 2048

// DataClient owns the outbound UDP socket used for BLIT/AUDIO/INIT/
// SWITCHRES/CLOSE commands and for receiving ACK datagrams. It performs no
// internal buffering or retries: every Send is one sendto, every Drain call
// is zero or more non-blocking recvfrom calls.
type DataClient struct {
	conn *net.UDPConn
	buf  [MaxDatagram]byte
}

// Dial resolves host and connects a UDP socket to its control port. No
// traffic is generated by Dial itself; the caller is expected to Send an
// INIT command next.
func Dial(host string) (*DataClient, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(ControlPort)))
	if err != nil {
		return nil, errors.Wrap(err, "groovy: resolve control addr")
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrap(err, "groovy: dial control socket")
	}
	return &DataClient{conn: conn}, nil
}

// Send transmits one already-framed datagram. A truncated write is reported
// as an error; Send never retries.
func (c *DataClient) Send(dg []byte) error {
	n, err := c.conn.Write(dg)
	if err != nil {
		return errors.Wrap(err, "groovy: send")
	}
	if n != len(dg) {
		return errors.Errorf("groovy: short send: wrote %d of %d bytes", n, len(dg))
	}
	return nil
}

// SendAll transmits a sequence of datagrams (as produced by Packetize) in
// order, on the single underlying socket, which preserves FIFO send order
// per spec §5.
func (c *DataClient) SendAll(dgs [][]byte) error {
	for _, dg := range dgs {
		if err := c.Send(dg); err != nil {
			return err
		}
	}
	return nil
}

// Drain performs zero or more non-blocking reads, invoking fn with each
// received datagram's bytes (valid only for the duration of the call), and
// returns once no further datagram is immediately available. It never
// blocks: the read deadline is set to "now" so a pending recv either
// succeeds immediately or times out.
func (c *DataClient) Drain(fn func(dg []byte)) error {
	for {
		if err := c.conn.SetReadDeadline(time.Now()); err != nil {
			return errors.Wrap(err, "groovy: set read deadline")
		}
		n, err := c.conn.Read(c.buf[:])
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return nil // best-effort transport: swallow other recv errors as noise.
		}
		fn(c.buf[:n])
	}
}

// Poll blocks for up to timeout waiting for at least one datagram to become
// available, then drains it (and any further immediately-available
// datagrams) via fn. It returns true if at least one datagram was consumed.
func (c *DataClient) Poll(timeout time.Duration, fn func(dg []byte)) (bool, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, errors.Wrap(err, "groovy: set read deadline")
	}
	n, err := c.conn.Read(c.buf[:])
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		return false, nil
	}
	fn(c.buf[:n])
	// Pick up anything else that arrived in the meantime, non-blocking.
	_ = c.Drain(fn)
	return true, nil
}

// Close closes the underlying socket.
func (c *DataClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
