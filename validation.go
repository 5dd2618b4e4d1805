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

// Input validation for operation parameters. Everything here runs
// before any transport I/O so a bad call never reaches the wire.

// Constant-read parameter bounds from the vendor command reference
const (
	minDwellTime     = 6
	maxDwellTime     = 150
	defaultDwellTime = 100
	maxChannel       = 16
	defaultChannel   = 1
	serialNumberLen  = 8
)

// resolveDwellTime applies the default for the zero value and
// bounds-checks everything else.
func resolveDwellTime(op string, dwell uint8) (uint8, error) {
	if dwell == 0 {
		return defaultDwellTime, nil
	}
	if dwell < minDwellTime || dwell > maxDwellTime {
		return 0, newUsageError(op, ErrInvalidDwellTime)
	}
	return dwell, nil
}

// resolveChannel treats nil as "use the default". Channel 0 is a legal
// value, which is why the field is a pointer rather than relying on
// the zero value.
func resolveChannel(op string, channel *uint8) (uint8, error) {
	if channel == nil {
		return defaultChannel, nil
	}
	if *channel > maxChannel {
		return 0, newUsageError(op, ErrInvalidChannel)
	}
	return *channel, nil
}

// resolvePowerLevels spreads the caller's power list across the four
// antenna slots. Accepts an empty list (every selected antenna at
// full power), a single level applied to every selected antenna, or
// one level per selected antenna in order. A level of zero means
// "unset" and is replaced with 0xFF — the device refuses zero power
// with a vendor error anyway.
func resolvePowerLevels(op string, power []uint8, cs *callSettings) ([NumAntennas]uint8, error) {
	var levels [NumAntennas]uint8

	switch {
	case len(power) == 0:
		for _, antenna := range cs.antennas {
			levels[antenna.slot()] = 0xFF
		}
	case len(power) == 1:
		for _, antenna := range cs.antennas {
			levels[antenna.slot()] = powerOrDefault(power[0])
		}
	case len(power) == len(cs.antennas):
		for i, antenna := range cs.antennas {
			levels[antenna.slot()] = powerOrDefault(power[i])
		}
	default:
		return levels, newUsageError(op, ErrInvalidPowerCount)
	}
	return levels, nil
}

func powerOrDefault(level uint8) uint8 {
	if level == 0 {
		return 0xFF
	}
	return level
}

// parseSerialNumber converts a reader serial given as canonical hex
// text into the eight link-order bytes the node-address commands
// carry.
func parseSerialNumber(op, serial string) ([]byte, error) {
	if serial == "" {
		return nil, newUsageError(op, ErrSerialNumberRequired)
	}
	tag, err := NewTagFromText(serial)
	if err != nil {
		return nil, newUsageError(op, ErrInvalidSerialNumber)
	}
	if len(tag.Raw) != serialNumberLen {
		return nil, newUsageError(op, ErrInvalidSerialNumber)
	}
	return tag.Raw, nil
}
