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

	"github.com/ZaparooProject/go-matrics/internal/frame"
)

// frameHeaderLen is the fixed prefix read first from the transport:
// marker, node, length. The length byte tells us how much remains.
const frameHeaderLen = 3

// transact runs one full request/response cycle: write the command
// frame, then read response frames until the more-data flag clears.
// Multi-packet responses come back in arrival order.
func (r *Reader) transact(ctx context.Context, op string, node, cmd uint8, payload []byte) ([]*frame.Packet, error) {
	if err := r.send(ctx, op, node, cmd, payload); err != nil {
		return nil, err
	}
	return r.collect(ctx)
}

// send encodes and writes a command frame without awaiting a reply.
// Used directly by operations the device never answers
// (start-constant-read, broadcast set-node-address).
func (r *Reader) send(ctx context.Context, op string, node, cmd uint8, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	raw, err := frame.Encode(node, cmd, payload)
	if err != nil {
		return newUsageError(op, ErrDataTooLarge)
	}
	r.logFrame("send", raw)
	if err := r.transport.WriteBytes(raw); err != nil {
		return wrapTransportError("write", err)
	}
	return nil
}

// collect reads response frames while the status low bit signals more
// data. Framing and reader errors abort the whole operation.
func (r *Reader) collect(ctx context.Context) ([]*frame.Packet, error) {
	var packets []*frame.Packet
	for {
		pkt, err := r.readPacket(ctx)
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
		if pkt.Status&frame.StatusMoreData == 0 {
			return packets, nil
		}
	}
}

// readPacket reads and validates exactly one framed response. The
// header is read first so the length byte can size the second read;
// cancellation is honored between frames, never mid-frame, so a
// partial packet is never left on the wire for a later operation.
func (r *Reader) readPacket(ctx context.Context) (*frame.Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read aborted: %w", err)
	}

	header, err := r.transport.ReadBytes(frameHeaderLen)
	if err != nil {
		return nil, wrapTransportError("read", err)
	}
	if header[frame.OffsetMarker] != frame.StartMarker {
		return nil, newFramingError(frame.ErrMissingStartMarker, header)
	}
	total := int(header[frame.OffsetLength]) + 1
	if total < frame.MinResponseFrame {
		return nil, newFramingError(frame.ErrTruncated, header)
	}

	rest, err := r.transport.ReadBytes(total - frameHeaderLen)
	if err != nil {
		return nil, wrapTransportError("read", err)
	}
	raw := make([]byte, 0, total)
	raw = append(raw, header...)
	raw = append(raw, rest...)
	r.logFrame("recv", raw)

	pkt, err := frame.Decode(raw)
	if err != nil {
		return nil, newFramingError(err, raw)
	}
	if err := packetStatusError(pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// packetStatusError maps an error-flagged status byte to the vendor
// error it carries. The top bit alone, or both top bits together,
// marks an error reply; the single payload byte is then the code.
func packetStatusError(pkt *frame.Packet) error {
	status := pkt.Status
	if status&frame.StatusErrorBit == frame.StatusErrorBit ||
		status&frame.StatusErrorMask == frame.StatusErrorMask {
		code := ReaderErrUndefined
		if len(pkt.Payload) > 0 {
			code = pkt.Payload[0]
		}
		return newReaderError(code)
	}
	return nil
}

// wrapTransportError converts a raw transport failure into a
// *TransportError unless the transport already produced one.
func wrapTransportError(op string, err error) error {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	if errors.Is(err, ErrTransportTimeout) {
		return NewTimeoutError(op, "")
	}
	return NewTransportError(op, "", err, GetErrorType(err))
}

// logFrame emits a hex trace of one raw frame when debug is enabled
func (r *Reader) logFrame(dir string, raw []byte) {
	if !r.debug {
		return
	}
	r.logger.Debug().Str("dir", dir).Hex("frame", raw).Msg("frame")
}
