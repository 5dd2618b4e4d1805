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
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Session defaults
const (
	// DefaultNode is the node address readers ship configured with.
	DefaultNode uint8 = 0x01
	// DefaultAntenna is the first antenna port.
	DefaultAntenna = Antenna1
	// DefaultTimeout bounds each framed read on the transport.
	DefaultTimeout = 2 * time.Second
)

// Reader represents a session with one reader (or a multidrop bus of
// readers sharing a serial line, addressed per call via OnNode).
//
// Thread Safety: Reader is NOT thread-safe. All methods must be called
// from a single goroutine or protected with external synchronization.
// The streaming-state set is the main hazard: StartConstantRead,
// ConstantRead and Close all consult it.
type Reader struct {
	transport       Transport
	streaming       map[uint8]bool
	logger          zerolog.Logger
	timeout         time.Duration
	node            uint8
	antenna         Antenna
	debug           bool
	skipInitialStop bool
}

// New creates a reader session over the given transport.
//
// Unless WithoutInitialStop is given, New sends a stop-constant-read
// command to the default node so a reader left streaming by a previous
// process comes up idle. A vendor error reply to that stop is fine —
// the device answered, which is all the handshake needs — but a
// transport or framing failure aborts construction.
func New(transport Transport, opts ...Option) (*Reader, error) {
	reader := &Reader{
		transport: transport,
		streaming: make(map[uint8]bool),
		logger:    zerolog.Nop(),
		timeout:   DefaultTimeout,
		node:      DefaultNode,
		antenna:   DefaultAntenna,
	}

	for _, opt := range opts {
		if err := opt(reader); err != nil {
			return nil, err
		}
	}

	if err := reader.SetTimeout(reader.timeout); err != nil {
		return nil, err
	}

	if !reader.skipInitialStop {
		if err := reader.StopConstantRead(); err != nil {
			var readerErr *ReaderError
			if !errors.As(err, &readerErr) {
				return nil, fmt.Errorf("initial stop failed: %w", err)
			}
		}
	}

	return reader, nil
}

// Transport returns the underlying transport
func (r *Reader) Transport() Transport {
	return r.transport
}

// Node returns the session's default node address
func (r *Reader) Node() uint8 {
	return r.node
}

// DefaultAntenna returns the session's default antenna
func (r *Reader) DefaultAntenna() Antenna {
	return r.antenna
}

// Timeout returns the session's per-read timeout
func (r *Reader) Timeout() time.Duration {
	return r.timeout
}

// SetTimeout sets the default timeout for framed reads
func (r *Reader) SetTimeout(timeout time.Duration) error {
	r.timeout = timeout
	if err := r.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// IsStreaming reports whether the given node is in constant-read mode
func (r *Reader) IsStreaming(node uint8) bool {
	return r.streaming[node]
}

// streamingNodes returns the nodes currently streaming, ascending.
func (r *Reader) streamingNodes() []uint8 {
	nodes := make([]uint8, 0, len(r.streaming))
	for node, active := range r.streaming {
		if active {
			nodes = append(nodes, node)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

// Close stops every streaming node and closes the transport. Stop
// failures do not halt teardown; they are collected and joined with
// any transport close error.
func (r *Reader) Close() error {
	return r.CloseContext(context.Background())
}

// CloseContext is Close with a context bounding the stop commands.
func (r *Reader) CloseContext(ctx context.Context) error {
	var errs []error
	if err := r.StopAllConstantReadContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.transport != nil {
		if err := r.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close transport: %w", err))
		}
	}
	return errors.Join(errs...)
}
