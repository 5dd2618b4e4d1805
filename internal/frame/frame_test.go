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

import (
	"bytes"
	"errors"
	"testing"
)

func goldenParamBlockFrame() []byte {
	raw := append([]byte{StartMarker}, paramBlockGoldenSpan()...)
	return append(raw, 0x8A, 0xF6)
}

func TestEncodeGoldenRequest(t *testing.T) {
	t.Parallel()
	got, err := Encode(0x04, CmdStopConstantRead, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := []byte{0x01, 0x04, 0x05, 0x26, 0x0A, 0x45}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
}

func TestEncodeResponseGoldenFrames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload []byte
		want    []byte
		node    uint8
		command uint8
		status  uint8
	}{
		{
			name:    "stop constant read response",
			node:    0x04,
			command: CmdStartConstantRead, // the stop reply echoes 0x25
			status:  0x00,
			payload: nil,
			want:    []byte{0x01, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9A},
		},
		{
			name:    "get param block response",
			node:    0x04,
			command: CmdGetParamBlock,
			status:  0x00,
			payload: paramBlockGoldenSpan()[4:],
			want:    goldenParamBlockFrame(),
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := EncodeResponse(tt.node, tt.command, tt.status, tt.payload)
			if err != nil {
				t.Fatalf("EncodeResponse() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeResponse() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestDecodeGoldenResponse(t *testing.T) {
	t.Parallel()
	pkt, err := Decode([]byte{0x01, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9A})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pkt.Node != 0x04 {
		t.Errorf("Node = %#02x, want 0x04", pkt.Node)
	}
	if pkt.Length != 0x06 {
		t.Errorf("Length = %#02x, want 0x06", pkt.Length)
	}
	if pkt.Command != CmdStartConstantRead {
		t.Errorf("Command = %#02x, want %#02x", pkt.Command, CmdStartConstantRead)
	}
	if pkt.Status != 0x00 {
		t.Errorf("Status = %#02x, want 0x00", pkt.Status)
	}
	if len(pkt.Payload) != 0 {
		t.Errorf("Payload = % x, want empty", pkt.Payload)
	}
}

func TestDecodeGoldenParamBlock(t *testing.T) {
	t.Parallel()
	pkt, err := Decode(goldenParamBlockFrame())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pkt.Command != CmdGetParamBlock {
		t.Errorf("Command = %#02x, want %#02x", pkt.Command, CmdGetParamBlock)
	}
	if len(pkt.Payload) != 32 {
		t.Fatalf("payload length = %d, want 32", len(pkt.Payload))
	}
	if pkt.Payload[0] != 0xFF {
		t.Errorf("payload[0] = %#02x, want 0xff", pkt.Payload[0])
	}
}

// TestRoundTrip covers the full response payload length range with a
// handful of node and command values: what Decode recovers must be exactly
// what EncodeResponse framed. Response payloads stop one byte short of
// MaxPayload because the status byte shares the length budget.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	nodes := []uint8{0x00, 0x01, 0x04, 0x7F, BroadcastNode}
	commands := []uint8{0x00, CmdEPCReadFullField, CmdReadFullField, CmdGetParamBlock, 0xFF}

	for size := 0; size < MaxPayload; size++ {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i*7 + size)
		}
		node := nodes[size%len(nodes)]
		command := commands[size%len(commands)]

		raw, err := EncodeResponse(node, command, 0, payload)
		if err != nil {
			t.Fatalf("EncodeResponse(size=%d) error = %v", size, err)
		}
		pkt, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode(size=%d) error = %v", size, err)
		}
		if pkt.Node != node || pkt.Command != command || pkt.Status != 0 {
			t.Fatalf("size=%d: got node=%#02x cmd=%#02x status=%#02x, want %#02x/%#02x/0",
				size, pkt.Node, pkt.Command, pkt.Status, node, command)
		}
		if !bytes.Equal(pkt.Payload, payload) {
			t.Fatalf("size=%d: payload mismatch", size)
		}
	}
}

func TestEncodePayloadLimits(t *testing.T) {
	t.Parallel()

	// A full-size request keeps its length byte at exactly 0xFF.
	full := make([]byte, MaxPayload)
	raw, err := Encode(0x01, CmdSetParamBlock, full)
	if err != nil {
		t.Fatalf("Encode(max payload) error = %v", err)
	}
	if raw[OffsetLength] != 0xFF {
		t.Errorf("length byte = %#02x, want 0xff", raw[OffsetLength])
	}

	big := make([]byte, MaxPayload+1)
	if _, err := Encode(0x01, CmdSetParamBlock, big); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Encode() error = %v, want ErrPayloadTooLarge", err)
	}
	// Responses give one byte of the budget to the status field.
	if _, err := EncodeResponse(0x01, CmdSetParamBlock, 0, full); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("EncodeResponse() error = %v, want ErrPayloadTooLarge", err)
	}
	if raw, err := EncodeResponse(0x01, CmdSetParamBlock, 0, full[:MaxPayload-1]); err != nil {
		t.Errorf("EncodeResponse(max-1) error = %v", err)
	} else if raw[OffsetLength] != 0xFF {
		t.Errorf("response length byte = %#02x, want 0xff", raw[OffsetLength])
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{
			name: "truncated",
			raw:  []byte{0x01, 0x04, 0x05, 0x26, 0x0A},
			want: ErrTruncated,
		},
		{
			name: "missing start marker",
			raw:  []byte{0x02, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9A},
			want: ErrMissingStartMarker,
		},
		{
			name: "length does not cover frame",
			raw:  []byte{0x01, 0x04, 0x09, 0x25, 0x00, 0x6B, 0x9A},
			want: ErrLengthMismatch,
		},
		{
			name: "corrupted checksum",
			raw:  []byte{0x01, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9B},
			want: ErrChecksumMismatch,
		},
		{
			name: "corrupted body",
			raw:  []byte{0x01, 0x05, 0x06, 0x25, 0x00, 0x6B, 0x9A},
			want: ErrChecksumMismatch,
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestDecodeRejectsBitFlips flips every bit of the golden response frame and
// expects Decode to fail each time, whichever validation catches it.
func TestDecodeRejectsBitFlips(t *testing.T) {
	t.Parallel()
	golden := []byte{0x01, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9A}
	for i := range golden {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(golden))
			copy(corrupted, golden)
			corrupted[i] ^= 1 << bit
			if _, err := Decode(corrupted); err == nil {
				t.Errorf("flip of byte %d bit %d decoded cleanly", i, bit)
			}
		}
	}
}
