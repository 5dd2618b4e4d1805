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

package matrics

import "time"

// Transport defines the interface for the byte link to a reader.
// This can be implemented by serial or TCP bridge backends.
//
// The protocol engine owns framing, so the transport only moves raw
// bytes: ReadBytes must block until exactly n bytes arrive or the
// timeout set by SetTimeout expires. Constant-read streaming means the
// device can send frames the host never asked for, which is why the
// interface exposes reads rather than a request/response call.
type Transport interface {
	// ReadBytes reads exactly n bytes from the device
	ReadBytes(n int) ([]byte, error)

	// WriteBytes writes the full buffer to the device
	WriteBytes(data []byte) error

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSerial represents a direct serial connection.
	TransportSerial TransportType = "serial"
	// TransportTCP represents a TCP serial-bridge connection.
	TransportTCP TransportType = "tcp"
	// TransportReplay represents a scripted transport for testing
	TransportReplay TransportType = "replay"
)
