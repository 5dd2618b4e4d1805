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

// Package frame implements the link-level packet envelope of the Matrics
// reader protocol: wire constants, the vendor checksum, and mechanical
// encoding/decoding of request and response frames. Vendor status
// interpretation (error codes, continuation flags) belongs to the engine
// layer above.
package frame

// Frame markers and addressing
const (
	StartMarker   = 0x01 // First byte of every frame on the wire
	BroadcastNode = 0xFF // Addresses every reader on a multi-drop link
)

// Frame layout offsets
const (
	OffsetMarker  = 0
	OffsetNode    = 1
	OffsetLength  = 2
	OffsetCommand = 3
	OffsetStatus  = 4 // Responses only; requests carry payload from byte 4
)

// Envelope sizes. The length byte counts every frame byte except the start
// marker: payload + 5 for requests, payload + 6 for responses (the extra
// status byte).
const (
	RequestOverhead  = 5
	ResponseOverhead = 6
	ChecksumLength   = 2
	MinRequestFrame  = 6 // marker + node + length + command + checksum
	MinResponseFrame = 7 // marker + node + length + command + status + checksum
	MaxPayload       = 250
)

// Response status bits
const (
	StatusMoreData  = 0x01 // Continuation packets follow
	StatusErrorBit  = 0x80 // Error flag; payload is a single vendor error code
	StatusErrorMask = 0xC0 // Both high bits set also signals an error
)

// Command codes
const (
	CmdEPCReadFullField  = 0x10
	CmdSetNodeAddress    = 0x12
	CmdGetReaderStatus   = 0x14
	CmdEPCSetParamBlock  = 0x15
	CmdEPCGetParamBlock  = 0x16
	CmdGetNodeAddress    = 0x19
	CmdSetBaudRate       = 0x1D
	CmdReadFullField     = 0x22
	CmdSetParamBlock     = 0x23
	CmdGetParamBlock     = 0x24
	CmdStartConstantRead = 0x25
	CmdStopConstantRead  = 0x26
)
