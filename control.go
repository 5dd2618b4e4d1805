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

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ZaparooProject/go-matrics/internal/frame"
)

// Reader status payload offsets
const (
	statusOffSerial       = 0
	statusOffVersionMajor = 8
	statusOffVersionMinor = 9
	statusOffVersionEng   = 10
	statusOffResetFlag    = 11
	statusOffCombineBits  = 12
	statusOffAntennas     = 13
	statusOffLastError    = 14
	statusPayloadMin      = 15
)

// ReaderStatus is the identity and health report of one reader node.
type ReaderStatus struct {
	// SerialNumber is the unit serial in canonical hex text, the same
	// form GetNodeAddress and SetNodeAddress accept.
	SerialNumber string

	// Version is the firmware version as "major.minor.engineering".
	Version string

	ResetFlag     uint8
	CombineBits   uint8
	AntennaStatus uint8
	LastError     uint8
}

// formatSerialNumber renders wire-order serial bytes as canonical hex
// text, the inverse of parseSerialNumber.
func formatSerialNumber(raw []byte) string {
	ordered := make([]byte, len(raw))
	copy(ordered, raw)
	reverseBytes(ordered)
	return hex.EncodeToString(ordered)
}

// GetReaderStatus queries the node for its serial number, firmware
// version, and antenna health.
func (r *Reader) GetReaderStatus(opts ...CallOption) (*ReaderStatus, error) {
	return r.GetReaderStatusContext(context.Background(), opts...)
}

// GetReaderStatusContext is GetReaderStatus with a context
func (r *Reader) GetReaderStatusContext(ctx context.Context, opts ...CallOption) (*ReaderStatus, error) {
	const op = "GetReaderStatus"
	cs := r.resolveCall(opts)
	pkts, err := r.transact(ctx, op, cs.node, frame.CmdGetReaderStatus, nil)
	if err != nil {
		return nil, err
	}
	payload := pkts[len(pkts)-1].Payload
	if len(payload) < statusPayloadMin {
		return nil, newFramingError(frame.ErrTruncated, payload)
	}
	return &ReaderStatus{
		SerialNumber: formatSerialNumber(payload[statusOffSerial:statusOffVersionMajor]),
		Version: fmt.Sprintf("%d.%d.%d",
			payload[statusOffVersionMajor],
			payload[statusOffVersionMinor],
			payload[statusOffVersionEng]),
		ResetFlag:     payload[statusOffResetFlag],
		CombineBits:   payload[statusOffCombineBits],
		AntennaStatus: payload[statusOffAntennas],
		LastError:     payload[statusOffLastError],
	}, nil
}

// SetNodeAddress assigns a new node address to the unit with the given
// serial number. The serial is required because the command is
// normally broadcast: it is how a specific unit is singled out before
// it has a usable address.
//
// When the target node is the broadcast address or was not named with
// OnNode, no response is awaited — the unit answers from its new
// address, so a reply to the old one cannot be relied on. Pass OnNode
// with the unit's current address to get an acknowledged transaction.
func (r *Reader) SetNodeAddress(newNode uint8, serialNumber string, opts ...CallOption) error {
	return r.SetNodeAddressContext(context.Background(), newNode, serialNumber, opts...)
}

// SetNodeAddressContext is SetNodeAddress with a context
func (r *Reader) SetNodeAddressContext(ctx context.Context, newNode uint8, serialNumber string, opts ...CallOption) error {
	const op = "SetNodeAddress"
	cs := r.resolveCall(opts)
	serial, err := parseSerialNumber(op, serialNumber)
	if err != nil {
		return err
	}
	payload := append([]byte{newNode}, serial...)
	if !cs.nodeSet || cs.node == frame.BroadcastNode {
		return r.send(ctx, op, cs.node, frame.CmdSetNodeAddress, payload)
	}
	_, err = r.transact(ctx, op, cs.node, frame.CmdSetNodeAddress, payload)
	return err
}

// GetNodeAddress asks which node address the unit with the given
// serial number holds. The query always goes out on the broadcast
// address; the serial number selects which unit answers.
func (r *Reader) GetNodeAddress(serialNumber string) (uint8, error) {
	return r.GetNodeAddressContext(context.Background(), serialNumber)
}

// GetNodeAddressContext is GetNodeAddress with a context
func (r *Reader) GetNodeAddressContext(ctx context.Context, serialNumber string) (uint8, error) {
	const op = "GetNodeAddress"
	serial, err := parseSerialNumber(op, serialNumber)
	if err != nil {
		return 0, err
	}
	pkts, err := r.transact(ctx, op, frame.BroadcastNode, frame.CmdGetNodeAddress, serial)
	if err != nil {
		return 0, err
	}
	payload := pkts[len(pkts)-1].Payload
	if len(payload) < 1 {
		return 0, newFramingError(frame.ErrTruncated, payload)
	}
	return payload[0], nil
}

// SetBaudRate switches the node's link speed. The rate must be one of
// SupportedBaudRates; anything else fails before a byte is written.
// The serial link itself is untouched — reconfigure the transport to
// the new rate after the command is acknowledged.
func (r *Reader) SetBaudRate(rate int, opts ...CallOption) error {
	return r.SetBaudRateContext(context.Background(), rate, opts...)
}

// SetBaudRateContext is SetBaudRate with a context
func (r *Reader) SetBaudRateContext(ctx context.Context, rate int, opts ...CallOption) error {
	const op = "SetBaudRate"
	cs := r.resolveCall(opts)
	code, ok := baudRateCodes[rate]
	if !ok {
		return newUsageError(op, fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, rate))
	}
	_, err := r.transact(ctx, op, cs.node, frame.CmdSetBaudRate, []byte{code})
	return err
}
