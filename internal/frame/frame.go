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

package frame

import "errors"

// Encode and decode failures. These are sentinels so the engine layer can
// map them onto its public error types with errors.Is.
var (
	ErrMissingStartMarker = errors.New("missing start marker")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("frame truncated")
	ErrLengthMismatch     = errors.New("length field mismatch")
	ErrPayloadTooLarge    = errors.New("payload too large")
)

// Packet is one parsed frame. Only responses are ever parsed on the host
// side, so Decode always treats its input as response-shaped (a status byte
// between the command and the payload).
type Packet struct {
	Payload []byte
	Node    uint8
	Length  uint8
	Command uint8
	Status  uint8
}

// Encode builds a request frame: marker, node, length, command, payload,
// checksum low byte first. The length byte counts everything after the
// marker.
func Encode(node, command uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, 0, len(payload)+MinRequestFrame)
	buf = append(buf, StartMarker, node, uint8(len(payload)+RequestOverhead), command)
	buf = append(buf, payload...)
	return appendChecksum(buf), nil
}

// EncodeResponse builds a response-shaped frame. The reader produces these;
// the host side only builds them for test doubles and loopback checks. The
// status byte costs one unit of the length budget, so response payloads top
// out one byte below MaxPayload.
func EncodeResponse(node, command, status uint8, payload []byte) ([]byte, error) {
	if len(payload)+ResponseOverhead > 0xFF {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, 0, len(payload)+MinResponseFrame)
	buf = append(buf, StartMarker, node, uint8(len(payload)+ResponseOverhead), command, status)
	buf = append(buf, payload...)
	return appendChecksum(buf), nil
}

func appendChecksum(buf []byte) []byte {
	sum := Checksum(buf[OffsetNode:])
	return append(buf, byte(sum), byte(sum>>8))
}

// Decode splits and validates one response frame. The payload slice aliases
// raw; callers hand over ownership of the buffer.
func Decode(raw []byte) (*Packet, error) {
	if len(raw) < MinResponseFrame {
		return nil, ErrTruncated
	}
	if raw[OffsetMarker] != StartMarker {
		return nil, ErrMissingStartMarker
	}
	if int(raw[OffsetLength]) != len(raw)-1 {
		return nil, ErrLengthMismatch
	}
	body := raw[OffsetNode : len(raw)-ChecksumLength]
	want := uint16(raw[len(raw)-2]) | uint16(raw[len(raw)-1])<<8
	if Checksum(body) != want {
		return nil, ErrChecksumMismatch
	}
	return &Packet{
		Node:    raw[OffsetNode],
		Length:  raw[OffsetLength],
		Command: raw[OffsetCommand],
		Status:  raw[OffsetStatus],
		Payload: raw[OffsetStatus+1 : len(raw)-ChecksumLength],
	}, nil
}
