// go-matrics
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-matrics.
//
// go-matrics is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-matrics is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-matrics; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package tcp provides a transport for readers behind TCP serial
// bridges and device servers.
package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/internal/transport"
)

const (
	dialTimeout = 5 * time.Second

	// defaultTimeout applies until the session layer pushes its own
	defaultTimeout = 500 * time.Millisecond

	dialRetries    = 2
	dialRetryDelay = 500 * time.Millisecond
)

// Transport implements the matrics.Transport interface over a TCP
// connection to a serial device server.
type Transport struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
}

// New dials a device server at addr ("host:port"). Refused
// connections are retried briefly; device servers drop the listener
// for a moment when their serial side reopens.
func New(addr string) (*Transport, error) {
	conn, err := transport.WithRetry(transport.RetryConfig{
		Description: addr,
		MaxRetries:  dialRetries,
		RetryDelay:  dialRetryDelay,
	}, func() (net.Conn, bool, error) {
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, false, fmt.Errorf("failed to connect to %s: %w", addr, err)
			}
			return nil, true, nil
		}
		return conn, false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	// The protocol is small framed request/response exchanges, so
	// coalescing hurts more than it helps.
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	return &Transport{
		conn:    conn,
		addr:    addr,
		timeout: defaultTimeout,
	}, nil
}

// ReadBytes reads exactly n bytes from the bridge
func (t *Transport) ReadBytes(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, matrics.ErrTransportNotConnected
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, matrics.NewTransportError("read", t.addr, err, matrics.ErrorTypePermanent)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, t.wrapNetError("read", err)
	}
	return buf, nil
}

// WriteBytes writes the full buffer to the bridge
func (t *Transport) WriteBytes(data []byte) error {
	if t.conn == nil {
		return matrics.ErrTransportNotConnected
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return matrics.NewTransportError("write", t.addr, err, matrics.ErrorTypePermanent)
	}
	if _, err := t.conn.Write(data); err != nil {
		return t.wrapNetError("write", err)
	}
	return nil
}

// wrapNetError maps a network failure onto the transport error model.
// Deadline expiry becomes a timeout; everything else is transient, the
// bridge may come back.
func (t *Transport) wrapNetError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return matrics.NewTimeoutError(op, t.addr)
	}
	return matrics.NewTransportError(op, t.addr, err, matrics.ErrorTypeTransient)
}

// SetTimeout sets the per-exchange deadline for reads and writes
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// IsConnected returns true if the connection is open
func (t *Transport) IsConnected() bool {
	return t.conn != nil
}

// Close closes the connection to the bridge
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close connection to %s: %w", t.addr, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() matrics.TransportType {
	return matrics.TransportTCP
}

// Ensure Transport implements matrics.Transport
var _ matrics.Transport = (*Transport)(nil)
