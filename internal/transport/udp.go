/*
 * bgprouter. Copyright (C) 2021-present the bgprouter authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package transport is the external-collaborator adapter:
// one UDP socket per configured neighbor, bound to the neighbor's port
// on localhost, plus a bounded-wait Poll for the run loop, which the core
// Dispatcher never imports. Nothing here is part of the specified
// core; it exists so cmd/bgprouter has something real to run.
package transport

import (
	"fmt"
	"net"
	"time"
)

// pollInterval is the short bounded wait the run loop requires so it
// stays responsive to shutdown even with no traffic arriving.
const pollInterval = 200 * time.Millisecond

// UDPHandle is a neighbor.Transport backed by a UDP socket bound to
// that neighbor's configured port.
type UDPHandle struct {
	conn *net.UDPConn
	peer *net.UDPAddr
}

// Dial opens a UDP socket listening on localhost:port for a neighbor,
// ready to send back to the same address.
func Dial(port int) (*UDPHandle, error) {
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}

	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen on port %d: %w", port, err)
	}

	return &UDPHandle{conn: conn, peer: addr}, nil
}

// Send implements neighbor.Transport. A send failure is surfaced to
// the host ("transport send failure") — it is not swallowed.
func (h *UDPHandle) Send(msg []byte) error {
	if _, err := h.conn.WriteToUDP(msg, h.peer); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Close releases the underlying socket.
func (h *UDPHandle) Close() error {
	return h.conn.Close()
}

// Poll blocks for up to pollInterval waiting for one datagram on the
// handle's socket. It returns (nil, false, nil) on a clean timeout so
// the caller's run loop can check for shutdown between reads — it
// blocks with a short poll interval purely to remain responsive to
// shutdown.
func (h *UDPHandle) Poll() ([]byte, bool, error) {
	buf := make([]byte, 64*1024)

	if err := h.conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		return nil, false, fmt.Errorf("transport: set read deadline: %w", err)
	}

	n, _, err := h.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("transport: read: %w", err)
	}

	return buf[:n], true, nil
}
