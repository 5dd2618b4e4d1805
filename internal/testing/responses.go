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

// Package testing builds golden wire frames for protocol tests. Every
// builder returns a complete frame, checksum included, so tests can
// pin exact request/response byte sequences without hand-computing
// checksums.
package testing

import (
	"fmt"

	"github.com/ZaparooProject/go-matrics/internal/frame"
)

// BuildRequest creates a complete request frame
func BuildRequest(node, command uint8, payload []byte) []byte {
	raw, err := frame.Encode(node, command, payload)
	if err != nil {
		panic(fmt.Sprintf("testing: build request %#02x: %v", command, err))
	}
	return raw
}

// BuildResponse creates a complete response frame
func BuildResponse(node, command, status uint8, payload []byte) []byte {
	raw, err := frame.EncodeResponse(node, command, status, payload)
	if err != nil {
		panic(fmt.Sprintf("testing: build response %#02x: %v", command, err))
	}
	return raw
}

// BuildStatusResponse creates an empty success response, the shape of
// acknowledgements to set-param, stop-constant-read, and set-baud.
func BuildStatusResponse(node, command uint8) []byte {
	return BuildResponse(node, command, 0x00, nil)
}

// BuildErrorResponse creates a vendor error response. The hardware
// echoes the error code in both the status byte and the single payload
// byte, which is reproduced here.
func BuildErrorResponse(node, command, code uint8) []byte {
	return BuildResponse(node, command, code, []byte{code})
}

// TagRecord renders one tag record for a full-field read payload: the
// record header byte followed by the identity in link byte order.
func TagRecord(header uint8, identity []byte) []byte {
	record := make([]byte, 0, 1+len(identity))
	record = append(record, header)
	return append(record, identity...)
}

// BuildFieldReadResponse creates a read-full-field response carrying
// the given records. Pass frame.StatusMoreData as status to chain a
// continuation packet after it.
func BuildFieldReadResponse(node, antenna, status uint8, records ...[]byte) []byte {
	return BuildResponse(node, frame.CmdReadFullField, status,
		fieldReadPayload(antenna, records))
}

// BuildEPCFieldReadResponse is BuildFieldReadResponse for the EPC
// command family.
func BuildEPCFieldReadResponse(node, antenna, status uint8, records ...[]byte) []byte {
	return BuildResponse(node, frame.CmdEPCReadFullField, status,
		fieldReadPayload(antenna, records))
}

func fieldReadPayload(antenna uint8, records [][]byte) []byte {
	payload := []byte{antenna, uint8(len(records))}
	for _, record := range records {
		payload = append(payload, record...)
	}
	return payload
}

// BuildParamBlockResponse creates a get-param-block response around a
// 32-byte block image.
func BuildParamBlockResponse(node uint8, block []byte) []byte {
	return BuildResponse(node, frame.CmdGetParamBlock, 0x00, block)
}

// BuildEPCParamBlockResponse is BuildParamBlockResponse for the EPC
// command family.
func BuildEPCParamBlockResponse(node uint8, block []byte) []byte {
	return BuildResponse(node, frame.CmdEPCGetParamBlock, 0x00, block)
}

// BuildReaderStatusResponse creates a get-reader-status response. The
// serial travels in link byte order; versions and flags follow it.
func BuildReaderStatusResponse(node uint8, serial []byte, version [3]uint8,
	resetFlag, combineBits, antennaStatus, lastError uint8,
) []byte {
	payload := make([]byte, 0, 16)
	payload = append(payload, serial...)
	payload = append(payload, version[0], version[1], version[2])
	payload = append(payload, resetFlag, combineBits, antennaStatus, lastError, 0x00)
	return BuildResponse(node, frame.CmdGetReaderStatus, 0x00, payload)
}

// BuildNodeAddressResponse creates a get-node-address response naming
// the node that holds the queried serial.
func BuildNodeAddressResponse(node, foundNode uint8) []byte {
	return BuildResponse(node, frame.CmdGetNodeAddress, 0x00, []byte{foundNode})
}

// ParamBlock builds a 32-byte parameter block image from the leading
// six configuration bytes, leaving filter bits and reserved bytes
// zero.
func ParamBlock(power, environment, combineBits, speed, filterLen, tagType uint8) []byte {
	block := make([]byte, 32)
	block[0] = power
	block[1] = environment
	block[2] = combineBits
	block[3] = speed
	block[4] = filterLen
	block[5] = tagType
	return block
}

// Common identities for testing, in link byte order. Their canonical
// hex texts reverse the bytes: TestIdentityA reads back as
// "000000000176bc02".
var (
	TestIdentityA = []byte{0x02, 0xBC, 0x76, 0x01, 0x00, 0x00, 0x00, 0x00}
	TestIdentityB = []byte{0x02, 0xC0, 0x76, 0x01, 0x00, 0x00, 0x00, 0x00}
	TestIdentityC = []byte{0x02, 0xC4, 0x76, 0x01, 0x00, 0x00, 0x00, 0x00}

	// TestIdentityLong is a 12-byte EPC-style identity
	TestIdentityLong = []byte{0xC4, 0x76, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF4, 0x30}

	// TestSerialBytes is a unit serial in link byte order; its
	// canonical text form is TestSerialNumber.
	TestSerialBytes  = []byte{0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00}
	TestSerialNumber = "0000000012345678"
)
