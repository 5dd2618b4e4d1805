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

// Tag record header bits in full-field read payloads
const (
	recordLongIdentity = 0x04 // 12-byte identity instead of 8
	recordClassMask    = 0x03
	epcShortIdentity   = 0x0C // EPC type byte for an 8-byte identity
)

// constantReadMaskLen is the fixed size of the mask bits field in a
// start-constant-read request.
const constantReadMaskLen = 8

// FieldRead is the outcome of one field scan. NumTags counts every
// report the reader sent, including duplicates of the same tag seen
// across continuation packets; Tags carries the parsed identities.
// The Unique fields are populated only by the Unique read variants.
//
// Err is only set on results returned by ConstantRead, which reports
// malformed or error-status packets as an empty read rather than
// failing the poll.
type FieldRead struct {
	Err         error
	Tags        []*Tag
	UniqueTags  []*Tag
	Antenna     Antenna
	NumTags     int
	UniqueCount int
}

// ConstantReadConfig tunes a constant-read stream. The zero value asks
// for full power on the selected antennas, the default dwell time and
// channel, and no mask.
type ConstantReadConfig struct {
	// Channel selects the frequency channel (0-16). Nil means the
	// vendor default channel 1; zero is a legal channel.
	Channel *uint8

	// Power holds per-antenna power levels. Empty means full power on
	// every selected antenna; a single value applies to all selected
	// antennas; otherwise one value per selected antenna, in order.
	Power []uint8

	// MaskBits, with MaskLength and MaskType, restrict the stream to
	// matching tags. Passed through to the device uninterpreted.
	MaskBits   [8]byte
	DwellTime  uint8 // 6-150; zero means the vendor default of 100
	MaskLength uint8
	MaskType   uint8
}

// parseFieldRead decodes one full-field read payload: antenna, tag
// count, then per-tag records of a header byte and an 8- or 12-byte
// identity in link order.
func parseFieldRead(payload []byte) (*FieldRead, error) {
	if len(payload) < 2 {
		return nil, newFramingError(frame.ErrTruncated, payload)
	}
	fr := &FieldRead{
		Antenna: Antenna(payload[0]),
		NumTags: int(payload[1]),
	}
	off := 2
	for i := 0; i < fr.NumTags; i++ {
		if off >= len(payload) {
			return nil, newFramingError(frame.ErrTruncated, payload)
		}
		header := payload[off]
		off++
		idLen := 8
		if header&recordLongIdentity != 0 {
			idLen = 12
		}
		if off+idLen > len(payload) {
			return nil, newFramingError(frame.ErrTruncated, payload)
		}
		class := TagClass(header & recordClassMask)
		fr.Tags = append(fr.Tags, NewTagFromBytes(payload[off:off+idLen], class))
		off += idLen
	}
	return fr, nil
}

// parseEPCFieldRead decodes the EPC flavor: same antenna and count
// lead-in, but each record's type byte selects the identity length
// (0x0C means 8 bytes, anything else 12).
func parseEPCFieldRead(payload []byte) (*FieldRead, error) {
	if len(payload) < 2 {
		return nil, newFramingError(frame.ErrTruncated, payload)
	}
	fr := &FieldRead{
		Antenna: Antenna(payload[0]),
		NumTags: int(payload[1]),
	}
	off := 2
	for i := 0; i < fr.NumTags; i++ {
		if off >= len(payload) {
			return nil, newFramingError(frame.ErrTruncated, payload)
		}
		idLen := 12
		if payload[off] == epcShortIdentity {
			idLen = 8
		}
		off++
		if off+idLen > len(payload) {
			return nil, newFramingError(frame.ErrTruncated, payload)
		}
		fr.Tags = append(fr.Tags, NewTagFromBytes(payload[off:off+idLen], TagClassEPC2))
		off += idLen
	}
	return fr, nil
}

// ReadFullField scans the field once and reports every visible tag.
func (r *Reader) ReadFullField(opts ...CallOption) (*FieldRead, error) {
	return r.ReadFullFieldContext(context.Background(), opts...)
}

// ReadFullFieldContext is ReadFullField with a context.
//
// When the reader chains continuation packets, the tag count sums
// across all of them but the tag list is the final packet's alone.
// That matches the vendor protocol's own accounting for this command;
// use the EPC variant or the Unique variant when the full list
// matters.
func (r *Reader) ReadFullFieldContext(ctx context.Context, opts ...CallOption) (*FieldRead, error) {
	const op = "ReadFullField"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return nil, err
	}
	pkts, err := r.transact(ctx, op, cs.node, frame.CmdReadFullField, []byte{byte(cs.antenna())})
	if err != nil {
		return nil, err
	}
	var result *FieldRead
	total := 0
	for _, pkt := range pkts {
		fr, perr := parseFieldRead(pkt.Payload)
		if perr != nil {
			return nil, perr
		}
		total += fr.NumTags
		result = fr
	}
	result.NumTags = total
	return result, nil
}

// ReadFullFieldUnique is ReadFullField plus a deduplicated view of the
// result, sorted by canonical identity.
func (r *Reader) ReadFullFieldUnique(opts ...CallOption) (*FieldRead, error) {
	return r.ReadFullFieldUniqueContext(context.Background(), opts...)
}

// ReadFullFieldUniqueContext is ReadFullFieldUnique with a context
func (r *Reader) ReadFullFieldUniqueContext(ctx context.Context, opts ...CallOption) (*FieldRead, error) {
	fr, err := r.ReadFullFieldContext(ctx, opts...)
	if err != nil {
		return nil, err
	}
	fr.UniqueTags = DedupeTags(fr.Tags)
	fr.UniqueCount = len(fr.UniqueTags)
	return fr, nil
}

// EPCReadFullField scans the field once using the EPC command family.
func (r *Reader) EPCReadFullField(opts ...CallOption) (*FieldRead, error) {
	return r.EPCReadFullFieldContext(context.Background(), opts...)
}

// EPCReadFullFieldContext is EPCReadFullField with a context. Unlike
// the non-EPC variant, continuation packets contribute their tags as
// well as their counts.
func (r *Reader) EPCReadFullFieldContext(ctx context.Context, opts ...CallOption) (*FieldRead, error) {
	const op = "EPCReadFullField"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return nil, err
	}
	pkts, err := r.transact(ctx, op, cs.node, frame.CmdEPCReadFullField, []byte{byte(cs.antenna())})
	if err != nil {
		return nil, err
	}
	var result *FieldRead
	var tags []*Tag
	total := 0
	for _, pkt := range pkts {
		fr, perr := parseEPCFieldRead(pkt.Payload)
		if perr != nil {
			return nil, perr
		}
		total += fr.NumTags
		tags = append(tags, fr.Tags...)
		result = fr
	}
	result.NumTags = total
	result.Tags = tags
	return result, nil
}

// EPCReadFullFieldUnique is EPCReadFullField plus a deduplicated view
// of the result.
func (r *Reader) EPCReadFullFieldUnique(opts ...CallOption) (*FieldRead, error) {
	return r.EPCReadFullFieldUniqueContext(context.Background(), opts...)
}

// EPCReadFullFieldUniqueContext is EPCReadFullFieldUnique with a context
func (r *Reader) EPCReadFullFieldUniqueContext(ctx context.Context, opts ...CallOption) (*FieldRead, error) {
	fr, err := r.EPCReadFullFieldContext(ctx, opts...)
	if err != nil {
		return nil, err
	}
	fr.UniqueTags = DedupeTags(fr.Tags)
	fr.UniqueCount = len(fr.UniqueTags)
	return fr, nil
}

// StartConstantRead puts the node into continuous read mode. The
// device streams unsolicited field-read packets from then on; drain
// them with ConstantRead and end the stream with StopConstantRead. No
// response is expected for the start command itself.
func (r *Reader) StartConstantRead(cfg ConstantReadConfig, opts ...CallOption) error {
	return r.StartConstantReadContext(context.Background(), cfg, opts...)
}

// StartConstantReadContext is StartConstantRead with a context
func (r *Reader) StartConstantReadContext(ctx context.Context, cfg ConstantReadConfig, opts ...CallOption) error {
	const op = "StartConstantRead"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return err
	}
	dwell, err := resolveDwellTime(op, cfg.DwellTime)
	if err != nil {
		return err
	}
	channel, err := resolveChannel(op, cfg.Channel)
	if err != nil {
		return err
	}
	power, err := resolvePowerLevels(op, cfg.Power, &cs)
	if err != nil {
		return err
	}

	flags := cs.selectorFlags()
	payload := make([]byte, 0, 2*NumAntennas+4+constantReadMaskLen)
	payload = append(payload, flags[:]...)
	payload = append(payload, power[:]...)
	payload = append(payload, dwell, channel, cfg.MaskLength, cfg.MaskType)
	payload = append(payload, cfg.MaskBits[:]...)

	if err := r.send(ctx, op, cs.node, frame.CmdStartConstantRead, payload); err != nil {
		return err
	}
	r.streaming[cs.node] = true
	return nil
}

// ConstantRead drains one streamed field-read packet from an active
// constant-read stream. It fails with a usage error when the node was
// never started, and with a transport error when no packet arrives
// within the timeout. A packet that arrives but cannot be decoded is
// reported as a zero-tag FieldRead with Err set, so polling loops
// always get a result to act on.
func (r *Reader) ConstantRead(opts ...CallOption) (*FieldRead, error) {
	return r.ConstantReadContext(context.Background(), opts...)
}

// ConstantReadContext is ConstantRead with a context
func (r *Reader) ConstantReadContext(ctx context.Context, opts ...CallOption) (*FieldRead, error) {
	const op = "ConstantRead"
	cs := r.resolveCall(opts)
	if !r.streaming[cs.node] {
		return nil, newUsageError(op, ErrNotStreaming)
	}
	pkt, err := r.readPacket(ctx)
	if err != nil {
		if isDecodeError(err) {
			return &FieldRead{Err: err}, nil
		}
		return nil, err
	}
	fr, perr := parseFieldRead(pkt.Payload)
	if perr != nil {
		return &FieldRead{Err: perr}, nil
	}
	return fr, nil
}

// isDecodeError reports whether err describes a malformed or
// error-status packet, as opposed to the transport failing to deliver
// one.
func isDecodeError(err error) bool {
	var fe *FramingError
	var re *ReaderError
	return errors.As(err, &fe) || errors.As(err, &re)
}

// StopConstantRead takes the node out of continuous read mode
func (r *Reader) StopConstantRead(opts ...CallOption) error {
	return r.StopConstantReadContext(context.Background(), opts...)
}

// StopConstantReadContext is StopConstantRead with a context. The
// streaming flag is cleared only once the device acknowledges the
// stop, so a failed stop stays visible to Close.
func (r *Reader) StopConstantReadContext(ctx context.Context, opts ...CallOption) error {
	const op = "StopConstantRead"
	cs := r.resolveCall(opts)
	if _, err := r.transact(ctx, op, cs.node, frame.CmdStopConstantRead, nil); err != nil {
		return err
	}
	delete(r.streaming, cs.node)
	return nil
}

// StopAllConstantRead stops every stream this session started,
// lowest node first. Failures are collected rather than short-
// circuiting, so one dead node cannot keep the rest streaming.
func (r *Reader) StopAllConstantRead() error {
	return r.StopAllConstantReadContext(context.Background())
}

// StopAllConstantReadContext is StopAllConstantRead with a context
func (r *Reader) StopAllConstantReadContext(ctx context.Context) error {
	var errs []error
	for _, node := range r.streamingNodes() {
		if err := r.StopConstantReadContext(ctx, OnNode(node)); err != nil {
			errs = append(errs, fmt.Errorf("stop constant read on node %#02x: %w", node, err))
		}
	}
	return errors.Join(errs...)
}
