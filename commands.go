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

import "sort"

// BroadcastNode addresses every reader on a multidrop link at once.
// Broadcast commands are written without awaiting a response.
const BroadcastNode uint8 = 0xFF

// Antenna identifies one of the reader's four antenna ports. The
// device addresses antennas by magic byte rather than index.
type Antenna uint8

// Antenna port identifiers
const (
	Antenna1 Antenna = 0xA0
	Antenna2 Antenna = 0xA1
	Antenna3 Antenna = 0xA2
	Antenna4 Antenna = 0xA3
)

// NumAntennas is the number of antenna ports on the reader.
const NumAntennas = 4

// Valid reports whether a is one of the four antenna identifiers.
func (a Antenna) Valid() bool {
	return a >= Antenna1 && a <= Antenna4
}

// slot converts the antenna identifier to its zero-based port index.
func (a Antenna) slot() int {
	return int(a - Antenna1)
}

// String returns a human-readable port name, e.g. "antenna 1".
func (a Antenna) String() string {
	if !a.Valid() {
		return "invalid antenna"
	}
	names := [NumAntennas]string{"antenna 1", "antenna 2", "antenna 3", "antenna 4"}
	return names[a.slot()]
}

// TagClass is the air-protocol family a tag replied on, as reported in
// the low bits of each tag record's status byte.
type TagClass uint8

// Tag protocol classes
const (
	TagClassEPC0 TagClass = 0x00
	TagClassEPC1 TagClass = 0x01
	TagClassISO  TagClass = 0x02
	TagClassEPC2 TagClass = 0x03
)

// String returns the protocol family name.
func (c TagClass) String() string {
	switch c {
	case TagClassEPC0:
		return "EPC Class 0"
	case TagClassEPC1:
		return "EPC Class 1"
	case TagClassISO:
		return "ISO 18000-6B"
	case TagClassEPC2:
		return "EPC Class 1 Gen 2"
	default:
		return "unknown"
	}
}

// baudRateCodes maps supported serial speeds to the device's one-byte
// selector used by SetBaudRate.
var baudRateCodes = map[int]uint8{
	230400: 0x00,
	115200: 0x01,
	57600:  0x02,
	38400:  0x03,
	19200:  0x04,
	9600:   0x05,
}

// DefaultBaudRate is the speed readers ship configured with.
const DefaultBaudRate = 230400

// SupportedBaudRates returns the serial speeds the reader can be set
// to, in ascending order.
func SupportedBaudRates() []int {
	rates := make([]int, 0, len(baudRateCodes))
	for rate := range baudRateCodes {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	return rates
}
