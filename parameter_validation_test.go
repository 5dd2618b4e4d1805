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
	"errors"
	"testing"
)

func TestResolveDwellTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		dwell   uint8
		want    uint8
		wantErr bool
	}{
		{name: "zero uses default", dwell: 0, want: 100},
		{name: "lower bound", dwell: 6, want: 6},
		{name: "upper bound", dwell: 150, want: 150},
		{name: "mid range", dwell: 80, want: 80},
		{name: "below range", dwell: 5, wantErr: true},
		{name: "above range", dwell: 151, wantErr: true},
		{name: "far above range", dwell: 255, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveDwellTime("test", tt.dwell)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDwellTime) {
					t.Errorf("resolveDwellTime(%d) error = %v, want ErrInvalidDwellTime", tt.dwell, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveDwellTime(%d) unexpected error: %v", tt.dwell, err)
			}
			if got != tt.want {
				t.Errorf("resolveDwellTime(%d) = %d, want %d", tt.dwell, got, tt.want)
			}
		})
	}
}

func TestResolveChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		channel *uint8
		name    string
		want    uint8
		wantErr bool
	}{
		{name: "nil uses default", channel: nil, want: 1},
		{name: "explicit zero is legal", channel: Uint8(0), want: 0},
		{name: "upper bound", channel: Uint8(16), want: 16},
		{name: "above range", channel: Uint8(17), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveChannel("test", tt.channel)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidChannel) {
					t.Errorf("resolveChannel() error = %v, want ErrInvalidChannel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveChannel() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveChannel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolvePowerLevels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		power    []uint8
		antennas []Antenna
		want     [NumAntennas]uint8
		wantErr  bool
	}{
		{
			name:     "empty means full power on selected",
			power:    nil,
			antennas: []Antenna{Antenna1, Antenna3},
			want:     [NumAntennas]uint8{0xFF, 0x00, 0xFF, 0x00},
		},
		{
			name:     "single level spreads",
			power:    []uint8{0x40},
			antennas: []Antenna{Antenna2, Antenna4},
			want:     [NumAntennas]uint8{0x00, 0x40, 0x00, 0x40},
		},
		{
			name:     "pairwise levels",
			power:    []uint8{0x10, 0x20, 0x30},
			antennas: []Antenna{Antenna1, Antenna2, Antenna3},
			want:     [NumAntennas]uint8{0x10, 0x20, 0x30, 0x00},
		},
		{
			name:     "zero level becomes full power",
			power:    []uint8{0x00},
			antennas: []Antenna{Antenna1},
			want:     [NumAntennas]uint8{0xFF, 0x00, 0x00, 0x00},
		},
		{
			name:     "count mismatch",
			power:    []uint8{0x10, 0x20},
			antennas: []Antenna{Antenna1, Antenna2, Antenna3},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cs := callSettings{antennas: tt.antennas}
			got, err := resolvePowerLevels("test", tt.power, &cs)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPowerCount) {
					t.Errorf("resolvePowerLevels() error = %v, want ErrInvalidPowerCount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolvePowerLevels() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolvePowerLevels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSerialNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		wantErr error
		name    string
		serial  string
		want    []byte
	}{
		{
			name:   "canonical serial",
			serial: "0000000012345678",
			want:   []byte{0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:   "uppercase and separators tolerated",
			serial: "00:00:00:00:12:34:56:78",
			want:   []byte{0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:    "empty",
			serial:  "",
			wantErr: ErrSerialNumberRequired,
		},
		{
			name:    "too short",
			serial:  "12345678",
			wantErr: ErrInvalidSerialNumber,
		},
		{
			name:    "too long",
			serial:  "00000000123456789a",
			wantErr: ErrInvalidSerialNumber,
		},
		{
			name:    "odd length",
			serial:  "0000000012345678f",
			wantErr: ErrInvalidSerialNumber,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseSerialNumber("test", tt.serial)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("parseSerialNumber(%q) error = %v, want %v", tt.serial, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSerialNumber(%q) unexpected error: %v", tt.serial, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("parseSerialNumber(%q) = % X, want % X", tt.serial, got, tt.want)
			}
		})
	}
}

func TestFormatSerialNumber_RoundTrip(t *testing.T) {
	t.Parallel()
	const serial = "0000000012345678"

	raw, err := parseSerialNumber("test", serial)
	if err != nil {
		t.Fatalf("parseSerialNumber() unexpected error: %v", err)
	}
	if got := formatSerialNumber(raw); got != serial {
		t.Errorf("formatSerialNumber() = %q, want %q", got, serial)
	}
}

func TestCallSettingsValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		wantErr  error
		name     string
		antennas []Antenna
	}{
		{name: "single valid antenna", antennas: []Antenna{Antenna1}},
		{name: "all antennas", antennas: []Antenna{Antenna1, Antenna2, Antenna3, Antenna4}},
		{name: "no antennas", antennas: nil, wantErr: ErrAntennaRequired},
		{name: "invalid antenna", antennas: []Antenna{Antenna(0x05)}, wantErr: ErrInvalidAntenna},
		{name: "valid then invalid", antennas: []Antenna{Antenna1, Antenna(0xA4)}, wantErr: ErrInvalidAntenna},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cs := callSettings{antennas: tt.antennas}
			err := cs.validate("test")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("validate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("validate() unexpected error: %v", err)
			}
		})
	}
}

func TestCallSettingsSelectorFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		antennas []Antenna
		want     [NumAntennas]byte
	}{
		{name: "antenna one", antennas: []Antenna{Antenna1}, want: [NumAntennas]byte{1, 0, 0, 0}},
		{name: "antenna four", antennas: []Antenna{Antenna4}, want: [NumAntennas]byte{0, 0, 0, 1}},
		{
			name:     "two antennas",
			antennas: []Antenna{Antenna2, Antenna3},
			want:     [NumAntennas]byte{0, 1, 1, 0},
		},
		{
			name:     "all antennas",
			antennas: []Antenna{Antenna1, Antenna2, Antenna3, Antenna4},
			want:     [NumAntennas]byte{1, 1, 1, 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cs := callSettings{antennas: tt.antennas}
			if got := cs.selectorFlags(); got != tt.want {
				t.Errorf("selectorFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCall(t *testing.T) {
	t.Parallel()

	reader := &Reader{node: 0x04, antenna: Antenna2}

	t.Run("defaults from session", func(t *testing.T) {
		t.Parallel()
		cs := reader.resolveCall(nil)
		if cs.node != 0x04 {
			t.Errorf("node = %#02x, want 0x04", cs.node)
		}
		if cs.nodeSet {
			t.Error("nodeSet = true for defaulted node")
		}
		if cs.antennaSet {
			t.Error("antennaSet = true for defaulted antenna")
		}
		if cs.antenna() != Antenna2 {
			t.Errorf("antenna = %v, want %v", cs.antenna(), Antenna2)
		}
	})

	t.Run("per call overrides", func(t *testing.T) {
		t.Parallel()
		cs := reader.resolveCall([]CallOption{OnNode(0x09), OnAntenna(Antenna4)})
		if cs.node != 0x09 {
			t.Errorf("node = %#02x, want 0x09", cs.node)
		}
		if !cs.nodeSet {
			t.Error("nodeSet = false after OnNode")
		}
		if !cs.antennaSet {
			t.Error("antennaSet = false after OnAntenna")
		}
		if cs.antenna() != Antenna4 {
			t.Errorf("antenna = %v, want %v", cs.antenna(), Antenna4)
		}
	})

	t.Run("OnAntennas copies its input", func(t *testing.T) {
		t.Parallel()
		antennas := []Antenna{Antenna1, Antenna2}
		cs := reader.resolveCall([]CallOption{OnAntennas(antennas...)})
		antennas[0] = Antenna4
		if cs.antennas[0] != Antenna1 {
			t.Error("OnAntennas aliases the caller's slice")
		}
	})
}
