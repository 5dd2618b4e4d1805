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
	"testing"
	"time"

	"github.com/ZaparooProject/go-matrics/internal/frame"
	testutil "github.com/ZaparooProject/go-matrics/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestReader builds a Reader over rt with the initial stop command
// suppressed, so tests only script the exchanges they care about.
func newTestReader(t *testing.T, rt *ReplayTransport, opts ...Option) *Reader {
	t.Helper()
	reader, err := New(rt, append([]Option{WithoutInitialStop()}, opts...)...)
	require.NoError(t, err)
	return reader
}

// expectStop scripts one stop-constant-read exchange for a node
func expectStop(rt *ReplayTransport, node uint8) *ReplayTransport {
	return rt.Expect(
		testutil.BuildRequest(node, frame.CmdStopConstantRead, nil),
		testutil.BuildStatusResponse(node, frame.CmdStopConstantRead),
	)
}

// defaultStartPayload is the start-constant-read payload produced by a
// zero ConstantReadConfig on the default antenna: antenna 1 selected at
// full power, dwell 100, channel 1, no mask.
func defaultStartPayload() []byte {
	payload := []byte{
		0x01, 0x00, 0x00, 0x00, // antenna selectors
		0xFF, 0x00, 0x00, 0x00, // power levels
		100, 1, // dwell time, channel
		0, 0, // mask length, mask type
	}
	return append(payload, make([]byte, 8)...)
}

// expectStart scripts one start-constant-read write, which the device
// does not answer.
func expectStart(rt *ReplayTransport, node uint8) *ReplayTransport {
	return rt.Expect(
		testutil.BuildRequest(node, frame.CmdStartConstantRead, defaultStartPayload()),
		nil,
	)
}

func TestNew_IssuesInitialStop(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	expectStop(rt, DefaultNode)

	reader, err := New(rt)
	require.NoError(t, err)
	assert.NotNil(t, reader)
	assert.Equal(t, 0, rt.Remaining())
}

func TestNew_InitialStopUsesConfiguredNode(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	expectStop(rt, 0x04)

	_, err := New(rt, WithNodeAddress(0x04))
	require.NoError(t, err)
	assert.Equal(t, 0, rt.Remaining())
}

func TestNew_ToleratesInitialStopReaderError(t *testing.T) {
	t.Parallel()

	// A reader that is not streaming answers the stop with a vendor
	// error; that is the idle state New is trying to reach.
	rt := NewReplayTransport()
	rt.Expect(
		testutil.BuildRequest(DefaultNode, frame.CmdStopConstantRead, nil),
		testutil.BuildErrorResponse(DefaultNode, frame.CmdStopConstantRead, 0xF2),
	)

	reader, err := New(rt)
	require.NoError(t, err)
	assert.NotNil(t, reader)
}

func TestNew_InitialStopTransportFailure(t *testing.T) {
	t.Parallel()

	// No scripted exchange: the stop write is rejected as unexpected.
	rt := NewReplayTransport()

	reader, err := New(rt)
	require.Error(t, err)
	assert.Nil(t, reader)
	assert.Contains(t, err.Error(), "initial stop failed")
	require.ErrorIs(t, err, ErrTransportWrite)
}

func TestNew_WithoutInitialStop(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()

	reader, err := New(rt, WithoutInitialStop())
	require.NoError(t, err)
	assert.Equal(t, rt, reader.Transport())
	assert.Equal(t, 0, rt.Remaining())
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	reader := newTestReader(t, NewReplayTransport())

	assert.Equal(t, DefaultNode, reader.Node())
	assert.Equal(t, DefaultAntenna, reader.DefaultAntenna())
	assert.Equal(t, DefaultTimeout, reader.Timeout())
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	reader := newTestReader(t, NewReplayTransport(),
		WithNodeAddress(0x09),
		WithAntenna(Antenna3),
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, uint8(0x09), reader.Node())
	assert.Equal(t, Antenna3, reader.DefaultAntenna())
	assert.Equal(t, 5*time.Second, reader.Timeout())
}

func TestNew_RejectsInvalidAntennaOption(t *testing.T) {
	t.Parallel()

	_, err := New(NewReplayTransport(), WithoutInitialStop(), WithAntenna(Antenna(0x55)))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidAntenna)

	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestReader_SetTimeout(t *testing.T) {
	t.Parallel()

	reader := newTestReader(t, NewReplayTransport())

	require.NoError(t, reader.SetTimeout(750*time.Millisecond))
	assert.Equal(t, 750*time.Millisecond, reader.Timeout())
}

func TestReader_IsStreaming(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	expectStart(rt, 0x02)
	reader := newTestReader(t, rt)

	assert.False(t, reader.IsStreaming(0x02))
	require.NoError(t, reader.StartConstantRead(ConstantReadConfig{}, OnNode(0x02)))
	assert.True(t, reader.IsStreaming(0x02))
	assert.False(t, reader.IsStreaming(DefaultNode))
}

func TestClose_StopsStreamingNodesInOrder(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	// Streams start in one order, teardown stops them lowest-first.
	expectStart(rt, 0x05)
	expectStart(rt, 0x02)
	expectStop(rt, 0x02)
	expectStop(rt, 0x05)
	reader := newTestReader(t, rt)

	require.NoError(t, reader.StartConstantRead(ConstantReadConfig{}, OnNode(0x05)))
	require.NoError(t, reader.StartConstantRead(ConstantReadConfig{}, OnNode(0x02)))

	require.NoError(t, reader.Close())
	assert.Equal(t, 0, rt.Remaining())
	assert.False(t, rt.IsConnected())
	assert.False(t, reader.IsStreaming(0x02))
	assert.False(t, reader.IsStreaming(0x05))
}

func TestClose_ReportsStopFailureButStillClosesTransport(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	expectStart(rt, 0x03)
	rt.Expect(
		testutil.BuildRequest(0x03, frame.CmdStopConstantRead, nil),
		testutil.BuildErrorResponse(0x03, frame.CmdStopConstantRead, 0xF4),
	)
	reader := newTestReader(t, rt)

	require.NoError(t, reader.StartConstantRead(ConstantReadConfig{}, OnNode(0x03)))

	err := reader.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop constant read on node 0x03")

	var readerErr *ReaderError
	assert.ErrorAs(t, err, &readerErr)
	assert.False(t, rt.IsConnected())
}

func TestClose_NoStreams(t *testing.T) {
	t.Parallel()

	rt := NewReplayTransport()
	reader := newTestReader(t, rt)

	require.NoError(t, reader.Close())
	assert.False(t, rt.IsConnected())
}
