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

// checksumPoly is the bit-reflected form of the CCITT polynomial 0x1021.
const checksumPoly = 0x8408

// checksumInit is the register preset the reader firmware uses.
const checksumInit = 0xBEEF

var checksumTable = makeChecksumTable()

func makeChecksumTable() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ checksumPoly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}

// Checksum computes the 16-bit frame checksum over data: a bit-reflected
// CRC-16 (polynomial 0x8408) with initial value 0xBEEF and a final
// complement. Frames carry the result low byte first, covering every byte
// between the start marker and the checksum itself.
func Checksum(data []byte) uint16 {
	crc := uint16(checksumInit)
	for _, b := range data {
		crc = (crc >> 8) ^ checksumTable[byte(crc)^b]
	}
	return ^crc
}
