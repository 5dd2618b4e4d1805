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
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Reader
type Option func(*Reader) error

// WithNodeAddress sets the default node address for operations that do
// not pass OnNode.
func WithNodeAddress(node uint8) Option {
	return func(r *Reader) error {
		r.node = node
		return nil
	}
}

// WithAntenna sets the default antenna for operations that do not pass
// OnAntenna.
func WithAntenna(antenna Antenna) Option {
	return func(r *Reader) error {
		if !antenna.Valid() {
			return newUsageError("WithAntenna", ErrInvalidAntenna)
		}
		r.antenna = antenna
		return nil
	}
}

// WithTimeout sets the default timeout for reader operations
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reader) error {
		return r.SetTimeout(timeout)
	}
}

// WithLogger sets the logger used for debug frame traces
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reader) error {
		r.logger = logger
		return nil
	}
}

// WithDebug enables hex logging of every frame sent and received
func WithDebug() Option {
	return func(r *Reader) error {
		r.debug = true
		return nil
	}
}

// WithoutInitialStop suppresses the stop-constant-read command that New
// normally issues to put the reader into a known idle state.
func WithoutInitialStop() Option {
	return func(r *Reader) error {
		r.skipInitialStop = true
		return nil
	}
}

// CallOption overrides the session node or antenna targets for a
// single operation.
type CallOption func(*callSettings)

// callSettings is the resolved per-call target: which node the frame is
// addressed to and which antennas the payload selects.
type callSettings struct {
	antennas   []Antenna
	node       uint8
	nodeSet    bool
	antennaSet bool
}

// OnNode addresses a single operation to the given node
func OnNode(node uint8) CallOption {
	return func(cs *callSettings) {
		cs.node = node
		cs.nodeSet = true
	}
}

// OnAntenna selects a single antenna for one operation
func OnAntenna(antenna Antenna) CallOption {
	return func(cs *callSettings) {
		cs.antennas = []Antenna{antenna}
		cs.antennaSet = true
	}
}

// OnAntennas selects multiple antennas for one operation. Operations
// that only act on one antenna use the first.
func OnAntennas(antennas ...Antenna) CallOption {
	return func(cs *callSettings) {
		cs.antennas = append([]Antenna(nil), antennas...)
		cs.antennaSet = true
	}
}

// resolveCall merges the session defaults with any per-call overrides.
func (r *Reader) resolveCall(opts []CallOption) callSettings {
	cs := callSettings{
		node:     r.node,
		antennas: []Antenna{r.antenna},
	}
	for _, opt := range opts {
		opt(&cs)
	}
	return cs
}

// antenna returns the primary antenna of the call
func (cs *callSettings) antenna() Antenna {
	return cs.antennas[0]
}

// validate rejects calls that name antennas the hardware does not have.
func (cs *callSettings) validate(op string) error {
	if len(cs.antennas) == 0 {
		return newUsageError(op, ErrAntennaRequired)
	}
	for _, antenna := range cs.antennas {
		if !antenna.Valid() {
			return newUsageError(op, ErrInvalidAntenna)
		}
	}
	return nil
}

// selectorFlags renders the four antenna on/off selector bytes used by
// the parameter-block and constant-read payloads.
func (cs *callSettings) selectorFlags() [NumAntennas]byte {
	var flags [NumAntennas]byte
	for _, antenna := range cs.antennas {
		if antenna.Valid() {
			flags[antenna.slot()] = 0x01
		}
	}
	return flags
}
