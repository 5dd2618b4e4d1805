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
	"bytes"
	"fmt"
	"sync"
	"time"
)

// replayStep is one scripted exchange: the exact frame the engine must
// write and the response bytes queued once it does.
type replayStep struct {
	request  []byte
	response []byte
}

// ReplayTransport is a scripted transport for conformance testing. It
// holds a golden request→response table consumed strictly in order: a
// write that does not byte-match the next expected request poisons the
// transport with an "unexpected input" error, and queued response
// bytes are doled out across however many ReadBytes calls the engine
// issues. Unsolicited frames (constant-read streaming) are queued with
// Stream.
type ReplayTransport struct {
	failure error
	steps   []replayStep
	pending []byte
	mu      sync.Mutex
	closed  bool
}

// NewReplayTransport creates an empty replay script
func NewReplayTransport() *ReplayTransport {
	return &ReplayTransport{}
}

// Expect appends one request→response exchange to the script. A nil
// response models a command the device never answers. Returns the
// transport so expectations chain.
func (rt *ReplayTransport) Expect(request, response []byte) *ReplayTransport {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.steps = append(rt.steps, replayStep{
		request:  append([]byte(nil), request...),
		response: append([]byte(nil), response...),
	})
	return rt
}

// Stream queues unsolicited frames, as a reader in constant-read mode
// would emit, for the next ReadBytes calls.
func (rt *ReplayTransport) Stream(frames ...[]byte) *ReplayTransport {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, f := range frames {
		rt.pending = append(rt.pending, f...)
	}
	return rt
}

// Remaining reports how many scripted exchanges were never consumed
func (rt *ReplayTransport) Remaining() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.steps)
}

// WriteBytes matches data against the next scripted request
func (rt *ReplayTransport) WriteBytes(data []byte) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.failure != nil {
		return rt.failure
	}
	if rt.closed {
		return ErrTransportNotConnected
	}
	if len(rt.steps) == 0 {
		rt.failure = fmt.Errorf("%w: unexpected input % X with no expectation left",
			ErrTransportWrite, data)
		return rt.failure
	}
	step := rt.steps[0]
	if !bytes.Equal(data, step.request) {
		rt.failure = fmt.Errorf("%w: unexpected input % X, want % X",
			ErrTransportWrite, data, step.request)
		return rt.failure
	}
	rt.steps = rt.steps[1:]
	rt.pending = append(rt.pending, step.response...)
	return nil
}

// ReadBytes serves queued response bytes. Asking for more than the
// script has queued behaves like a dead line: a timeout error.
func (rt *ReplayTransport) ReadBytes(n int) ([]byte, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.failure != nil {
		return nil, rt.failure
	}
	if rt.closed {
		return nil, ErrTransportNotConnected
	}
	if len(rt.pending) < n {
		return nil, NewTimeoutError("read", "replay")
	}
	out := append([]byte(nil), rt.pending[:n]...)
	rt.pending = rt.pending[n:]
	return out, nil
}

// SetTimeout is a no-op for the replay script
func (*ReplayTransport) SetTimeout(_ time.Duration) error {
	return nil
}

// IsConnected returns true until Close is called
func (rt *ReplayTransport) IsConnected() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return !rt.closed
}

// Close marks the transport closed
func (rt *ReplayTransport) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.closed = true
	return nil
}

// Type returns TransportReplay
func (*ReplayTransport) Type() TransportType {
	return TransportReplay
}

// BlockingTransport is a transport whose reads block until Unblock()
// is called, the timeout expires, or the transport is closed. Used for
// testing cancellation and teardown while a read is in flight.
type BlockingTransport struct {
	blockChan chan struct{}
	Response  []byte
	timeout   time.Duration
	mu        sync.Mutex
	offset    int
	closed    bool
}

// NewBlockingTransport creates a blocking transport with a 5s timeout
func NewBlockingTransport() *BlockingTransport {
	return &BlockingTransport{
		blockChan: make(chan struct{}),
		timeout:   5 * time.Second,
	}
}

// ReadBytes blocks until Unblock, timeout, or Close, then serves the
// next n bytes of Response.
func (m *BlockingTransport) ReadBytes(n int) ([]byte, error) {
	m.mu.Lock()
	blockChan := m.blockChan
	closed := m.closed
	timeout := m.timeout
	m.mu.Unlock()

	if closed {
		return nil, ErrTransportNotConnected
	}

	select {
	case <-blockChan:
	case <-time.After(timeout):
		return nil, NewTimeoutError("read", "blocking")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportNotConnected
	}
	if m.offset+n > len(m.Response) {
		return nil, NewTimeoutError("read", "blocking")
	}
	out := append([]byte(nil), m.Response[m.offset:m.offset+n]...)
	m.offset += n
	return out, nil
}

// WriteBytes accepts and discards all writes
func (m *BlockingTransport) WriteBytes(_ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportNotConnected
	}
	return nil
}

// Unblock allows one blocked ReadBytes to proceed
func (m *BlockingTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// SetResponse sets the byte stream served after unblocking
func (m *BlockingTransport) SetResponse(response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = response
	m.offset = 0
}

// SetTimeout configures the timeout for blocked reads
func (m *BlockingTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected returns true until Close is called
func (m *BlockingTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close unblocks all operations and marks the transport closed
func (m *BlockingTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.blockChan)
	}
	return nil
}

// Type returns TransportReplay
func (*BlockingTransport) Type() TransportType {
	return TransportReplay
}
