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

	"github.com/ZaparooProject/go-matrics/internal/frame"
)

// paramBlockLen is the size of the per-antenna parameter block as it
// travels on the wire.
const paramBlockLen = 32

// Parameter block byte offsets
const (
	paramOffPower       = 0
	paramOffEnvironment = 1
	paramOffCombineBits = 2
	paramOffSpeed       = 3
	paramOffFilterLen   = 4 // filter type in the EPC block
	paramOffTagType     = 5
	paramOffFilterBits  = 8  // 8 bytes
	paramOffReserved    = 16 // 16 bytes, preserved verbatim
)

// ParamBlock is the per-(node,antenna) configuration block. Reserved
// regions are carried through unexported so a get-modify-set cycle
// writes back exactly what the device reported.
type ParamBlock struct {
	CombinedAntennas []Antenna
	FilterBits       [8]byte
	reservedPair     [2]byte
	reservedTail     [16]byte
	Power            uint8
	Environment      uint8
	CombineBits      uint8
	ProtocolSpeed    uint8
	FilterLength     uint8
	TagType          uint8
}

// EPCParamBlock is the parameter block used by the EPC command pair.
// It differs from ParamBlock only in carrying a filter type where the
// other block has filter length and tag type.
type EPCParamBlock struct {
	CombinedAntennas []Antenna
	FilterBits       [8]byte
	reservedPair     [2]byte
	reservedTail     [16]byte
	Power            uint8
	Environment      uint8
	CombineBits      uint8
	ProtocolSpeed    uint8
	FilterType       uint8
}

// ParamBlockUpdate holds field overrides for ChangeParamBlock. A nil
// field keeps the value fetched from the device; Uint8(0) writes an
// explicit zero.
type ParamBlockUpdate struct {
	Power         *uint8
	Environment   *uint8
	CombineBits   *uint8
	ProtocolSpeed *uint8
	FilterLength  *uint8
	TagType       *uint8
	FilterBits    *[8]byte
}

// EPCParamBlockUpdate holds field overrides for EPCChangeParamBlock
type EPCParamBlockUpdate struct {
	Power         *uint8
	Environment   *uint8
	CombineBits   *uint8
	ProtocolSpeed *uint8
	FilterType    *uint8
	FilterBits    *[8]byte
}

// Uint8 returns a pointer to v, for populating update fields inline.
func Uint8(v uint8) *uint8 {
	return &v
}

// combinedAntennas expands a combine bit mask into the antenna list it
// names: bit 0 is antenna 1 and so on.
func combinedAntennas(bits uint8) []Antenna {
	var antennas []Antenna
	for slot := 0; slot < NumAntennas; slot++ {
		if bits&(1<<slot) != 0 {
			antennas = append(antennas, Antenna1+Antenna(slot))
		}
	}
	return antennas
}

// parseParamBlock decodes a 32-byte block payload
func parseParamBlock(payload []byte) (*ParamBlock, error) {
	if len(payload) < paramBlockLen {
		return nil, newFramingError(frame.ErrTruncated, payload)
	}
	block := &ParamBlock{
		Power:         payload[paramOffPower],
		Environment:   payload[paramOffEnvironment],
		CombineBits:   payload[paramOffCombineBits],
		ProtocolSpeed: payload[paramOffSpeed],
		FilterLength:  payload[paramOffFilterLen],
		TagType:       payload[paramOffTagType],
	}
	copy(block.reservedPair[:], payload[paramOffTagType+1:paramOffFilterBits])
	copy(block.FilterBits[:], payload[paramOffFilterBits:paramOffReserved])
	copy(block.reservedTail[:], payload[paramOffReserved:paramBlockLen])
	block.CombinedAntennas = combinedAntennas(block.CombineBits)
	return block, nil
}

// parseEPCParamBlock decodes the EPC flavor of the block
func parseEPCParamBlock(payload []byte) (*EPCParamBlock, error) {
	if len(payload) < paramBlockLen {
		return nil, newFramingError(frame.ErrTruncated, payload)
	}
	block := &EPCParamBlock{
		Power:         payload[paramOffPower],
		Environment:   payload[paramOffEnvironment],
		CombineBits:   payload[paramOffCombineBits],
		ProtocolSpeed: payload[paramOffSpeed],
		FilterType:    payload[paramOffFilterLen],
	}
	copy(block.reservedPair[:], payload[paramOffTagType+1:paramOffFilterBits])
	copy(block.FilterBits[:], payload[paramOffFilterBits:paramOffReserved])
	copy(block.reservedTail[:], payload[paramOffReserved:paramBlockLen])
	block.CombinedAntennas = combinedAntennas(block.CombineBits)
	return block, nil
}

// encode renders the block in wire order. A zero power level means
// "unset" and goes out as full power: the device rejects zero with a
// zero-power vendor error.
func (b *ParamBlock) encode() [paramBlockLen]byte {
	var out [paramBlockLen]byte
	out[paramOffPower] = powerOrDefault(b.Power)
	out[paramOffEnvironment] = b.Environment
	out[paramOffCombineBits] = b.CombineBits
	out[paramOffSpeed] = b.ProtocolSpeed
	out[paramOffFilterLen] = b.FilterLength
	out[paramOffTagType] = b.TagType
	copy(out[paramOffTagType+1:paramOffFilterBits], b.reservedPair[:])
	copy(out[paramOffFilterBits:paramOffReserved], b.FilterBits[:])
	copy(out[paramOffReserved:], b.reservedTail[:])
	return out
}

func (b *EPCParamBlock) encode() [paramBlockLen]byte {
	var out [paramBlockLen]byte
	out[paramOffPower] = powerOrDefault(b.Power)
	out[paramOffEnvironment] = b.Environment
	out[paramOffCombineBits] = b.CombineBits
	out[paramOffSpeed] = b.ProtocolSpeed
	out[paramOffFilterLen] = b.FilterType
	copy(out[paramOffTagType+1:paramOffFilterBits], b.reservedPair[:])
	copy(out[paramOffFilterBits:paramOffReserved], b.FilterBits[:])
	copy(out[paramOffReserved:], b.reservedTail[:])
	return out
}

// apply copies the update's present fields onto the block
func (u *ParamBlockUpdate) apply(block *ParamBlock) {
	if u.Power != nil {
		block.Power = *u.Power
	}
	if u.Environment != nil {
		block.Environment = *u.Environment
	}
	if u.CombineBits != nil {
		block.CombineBits = *u.CombineBits
	}
	if u.ProtocolSpeed != nil {
		block.ProtocolSpeed = *u.ProtocolSpeed
	}
	if u.FilterLength != nil {
		block.FilterLength = *u.FilterLength
	}
	if u.TagType != nil {
		block.TagType = *u.TagType
	}
	if u.FilterBits != nil {
		block.FilterBits = *u.FilterBits
	}
}

func (u *EPCParamBlockUpdate) apply(block *EPCParamBlock) {
	if u.Power != nil {
		block.Power = *u.Power
	}
	if u.Environment != nil {
		block.Environment = *u.Environment
	}
	if u.CombineBits != nil {
		block.CombineBits = *u.CombineBits
	}
	if u.ProtocolSpeed != nil {
		block.ProtocolSpeed = *u.ProtocolSpeed
	}
	if u.FilterType != nil {
		block.FilterType = *u.FilterType
	}
	if u.FilterBits != nil {
		block.FilterBits = *u.FilterBits
	}
}

// setPayload prepends the four antenna selector bytes to a block image
func setPayload(cs *callSettings, block [paramBlockLen]byte) []byte {
	flags := cs.selectorFlags()
	payload := make([]byte, 0, NumAntennas+paramBlockLen)
	payload = append(payload, flags[:]...)
	payload = append(payload, block[:]...)
	return payload
}

// GetParamBlock fetches the parameter block for one antenna
func (r *Reader) GetParamBlock(opts ...CallOption) (*ParamBlock, error) {
	return r.GetParamBlockContext(context.Background(), opts...)
}

// GetParamBlockContext is GetParamBlock with a context
func (r *Reader) GetParamBlockContext(ctx context.Context, opts ...CallOption) (*ParamBlock, error) {
	const op = "GetParamBlock"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return nil, err
	}
	pkts, err := r.transact(ctx, op, cs.node, frame.CmdGetParamBlock, []byte{byte(cs.antenna())})
	if err != nil {
		return nil, err
	}
	return parseParamBlock(pkts[len(pkts)-1].Payload)
}

// SetParamBlock writes a parameter block to the selected antennas. A
// nil block writes the vendor defaults.
func (r *Reader) SetParamBlock(block *ParamBlock, opts ...CallOption) error {
	return r.SetParamBlockContext(context.Background(), block, opts...)
}

// SetParamBlockContext is SetParamBlock with a context
func (r *Reader) SetParamBlockContext(ctx context.Context, block *ParamBlock, opts ...CallOption) error {
	const op = "SetParamBlock"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return err
	}
	if block == nil {
		block = &ParamBlock{}
	}
	_, err := r.transact(ctx, op, cs.node, frame.CmdSetParamBlock, setPayload(&cs, block.encode()))
	return err
}

// ChangeParamBlock fetches the block for the given antenna, applies
// the update's present fields, and writes it back. The antenna must be
// named explicitly with OnAntenna — a read-modify-write against an
// implicit default is how configuration ends up on the wrong port.
func (r *Reader) ChangeParamBlock(update ParamBlockUpdate, opts ...CallOption) error {
	return r.ChangeParamBlockContext(context.Background(), update, opts...)
}

// ChangeParamBlockContext is ChangeParamBlock with a context
func (r *Reader) ChangeParamBlockContext(ctx context.Context, update ParamBlockUpdate, opts ...CallOption) error {
	const op = "ChangeParamBlock"
	cs := r.resolveCall(opts)
	if !cs.antennaSet {
		return newUsageError(op, ErrAntennaRequired)
	}
	if err := cs.validate(op); err != nil {
		return err
	}
	block, err := r.GetParamBlockContext(ctx, opts...)
	if err != nil {
		return err
	}
	update.apply(block)
	return r.SetParamBlockContext(ctx, block, opts...)
}

// EPCGetParamBlock fetches the EPC parameter block for one antenna
func (r *Reader) EPCGetParamBlock(opts ...CallOption) (*EPCParamBlock, error) {
	return r.EPCGetParamBlockContext(context.Background(), opts...)
}

// EPCGetParamBlockContext is EPCGetParamBlock with a context
func (r *Reader) EPCGetParamBlockContext(ctx context.Context, opts ...CallOption) (*EPCParamBlock, error) {
	const op = "EPCGetParamBlock"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return nil, err
	}
	pkts, err := r.transact(ctx, op, cs.node, frame.CmdEPCGetParamBlock, []byte{byte(cs.antenna())})
	if err != nil {
		return nil, err
	}
	return parseEPCParamBlock(pkts[len(pkts)-1].Payload)
}

// EPCSetParamBlock writes an EPC parameter block to the selected
// antennas. A nil block writes the vendor defaults.
func (r *Reader) EPCSetParamBlock(block *EPCParamBlock, opts ...CallOption) error {
	return r.EPCSetParamBlockContext(context.Background(), block, opts...)
}

// EPCSetParamBlockContext is EPCSetParamBlock with a context
func (r *Reader) EPCSetParamBlockContext(ctx context.Context, block *EPCParamBlock, opts ...CallOption) error {
	const op = "EPCSetParamBlock"
	cs := r.resolveCall(opts)
	if err := cs.validate(op); err != nil {
		return err
	}
	if block == nil {
		block = &EPCParamBlock{}
	}
	_, err := r.transact(ctx, op, cs.node, frame.CmdEPCSetParamBlock, setPayload(&cs, block.encode()))
	return err
}

// EPCChangeParamBlock is the get-merge-set cycle over the EPC pair,
// with the same explicit-antenna requirement as ChangeParamBlock.
func (r *Reader) EPCChangeParamBlock(update EPCParamBlockUpdate, opts ...CallOption) error {
	return r.EPCChangeParamBlockContext(context.Background(), update, opts...)
}

// EPCChangeParamBlockContext is EPCChangeParamBlock with a context
func (r *Reader) EPCChangeParamBlockContext(ctx context.Context, update EPCParamBlockUpdate, opts ...CallOption) error {
	const op = "EPCChangeParamBlock"
	cs := r.resolveCall(opts)
	if !cs.antennaSet {
		return newUsageError(op, ErrAntennaRequired)
	}
	if err := cs.validate(op); err != nil {
		return err
	}
	block, err := r.EPCGetParamBlockContext(ctx, opts...)
	if err != nil {
		return err
	}
	update.apply(block)
	return r.EPCSetParamBlockContext(ctx, block, opts...)
}
