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

// Package serial provides the direct serial-port transport
package serial

import (
	"errors"
	"fmt"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/internal/transport"
	goserial "go.bug.st/serial"
)

const (
	// defaultTimeout applies until the session layer pushes its own
	defaultTimeout = 500 * time.Millisecond

	// USB serial adapters can take a moment to enumerate after a
	// replug, so opening retries briefly before giving up.
	openRetries    = 3
	openRetryDelay = 100 * time.Millisecond
)

// Transport implements the matrics.Transport interface over a serial
// port. The readers speak 8N1 at 230400 baud out of the box.
type Transport struct {
	port     goserial.Port
	mode     *goserial.Mode
	portName string
	timeout  time.Duration
}

// New opens portName at the factory default baud rate.
func New(portName string) (*Transport, error) {
	return NewAtBaudRate(portName, matrics.DefaultBaudRate)
}

// NewAtBaudRate opens portName at an explicit baud rate, for buses
// that have been moved off the default with SetBaudRate.
func NewAtBaudRate(portName string, baudRate int) (*Transport, error) {
	mode := &goserial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	}

	port, err := transport.WithRetry(transport.RetryConfig{
		Description: portName,
		MaxRetries:  openRetries,
		RetryDelay:  openRetryDelay,
	}, func() (goserial.Port, bool, error) {
		port, err := goserial.Open(portName, mode)
		if err != nil {
			if retryableOpenError(err) {
				return nil, true, nil
			}
			return nil, false, fmt.Errorf("failed to open serial port %s: %w", portName, err)
		}
		return port, false, nil
	})
	if err != nil {
		return nil, err
	}

	t := &Transport{
		port:     port,
		mode:     mode,
		portName: portName,
		timeout:  defaultTimeout,
	}
	if err := t.SetTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, err
	}

	// Drop whatever a previous session left in the input buffer so the
	// first framed read does not land mid-frame.
	_ = port.ResetInputBuffer()

	return t, nil
}

// retryableOpenError reports whether an open failure is worth another
// attempt: the port not being there yet, or still held by a process
// that is on its way out.
func retryableOpenError(err error) bool {
	var portErr *goserial.PortError
	if !errors.As(err, &portErr) {
		return false
	}
	switch portErr.Code() {
	case goserial.PortNotFound, goserial.PortBusy:
		return true
	default:
		return false
	}
}

// ReadBytes reads exactly n bytes, accumulating across however many
// short reads the port delivers. A read that returns no bytes means
// the port's read timeout elapsed with a silent line.
func (t *Transport) ReadBytes(n int) ([]byte, error) {
	if t.port == nil {
		return nil, matrics.ErrTransportNotConnected
	}

	buf := make([]byte, n)
	got := 0
	deadline := time.Now().Add(t.timeout)
	for got < n {
		if time.Now().After(deadline) {
			return nil, matrics.NewTimeoutError("read", t.portName)
		}
		read, err := t.port.Read(buf[got:])
		if err != nil {
			return nil, matrics.NewTransportError("read", t.portName, err, matrics.ErrorTypeTransient)
		}
		if read == 0 {
			return nil, matrics.NewTimeoutError("read", t.portName)
		}
		got += read
	}
	return buf, nil
}

// WriteBytes writes the full buffer to the port
func (t *Transport) WriteBytes(data []byte) error {
	if t.port == nil {
		return matrics.ErrTransportNotConnected
	}

	written, err := t.port.Write(data)
	if err != nil {
		return matrics.NewTransportError("write", t.portName, err, matrics.ErrorTypeTransient)
	}
	if written != len(data) {
		return matrics.NewTransportError("write", t.portName,
			fmt.Errorf("%w: short write %d of %d bytes", matrics.ErrTransportWrite, written, len(data)),
			matrics.ErrorTypeTransient)
	}
	return nil
}

// SetTimeout sets the read timeout for the transport
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	if t.port == nil {
		return nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return matrics.NewTransportError("setTimeout", t.portName, err, matrics.ErrorTypePermanent)
	}
	return nil
}

// SetBaudRate reconfigures the port speed. Call it after commanding
// the reader to a new rate with Reader.SetBaudRate, or the two ends
// stop understanding each other.
func (t *Transport) SetBaudRate(baudRate int) error {
	if t.port == nil {
		return matrics.ErrTransportNotConnected
	}
	mode := *t.mode
	mode.BaudRate = baudRate
	if err := t.port.SetMode(&mode); err != nil {
		return matrics.NewTransportError("setBaudRate", t.portName, err, matrics.ErrorTypePermanent)
	}
	t.mode = &mode
	return nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() matrics.TransportType {
	return matrics.TransportSerial
}

// Ensure Transport implements matrics.Transport
var _ matrics.Transport = (*Transport)(nil)
