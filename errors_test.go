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
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := getIsRetryableTestCases()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsRetryable(tt.err)
			if got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func getIsRetryableTestCases() []struct {
	err  error
	name string
	want bool
} {
	return []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plain error not retryable",
			err:  errors.New("something odd"),
			want: false,
		},
		{
			name: "transport timeout retryable",
			err:  ErrTransportTimeout,
			want: true,
		},
		{
			name: "transport read retryable",
			err:  ErrTransportRead,
			want: true,
		},
		{
			name: "transport write retryable",
			err:  ErrTransportWrite,
			want: true,
		},
		{
			name: "communication failed retryable",
			err:  ErrCommunicationFailed,
			want: true,
		},
		{
			name: "checksum mismatch retryable",
			err:  ErrChecksumMismatch,
			want: true,
		},
		{
			name: "missing start marker retryable",
			err:  ErrMissingStartMarker,
			want: true,
		},
		{
			name: "device not found not retryable",
			err:  ErrDeviceNotFound,
			want: false,
		},
		{
			name: "unsupported baud rate not retryable",
			err:  ErrUnsupportedBaudRate,
			want: false,
		},
		{
			name: "wrapped timeout retryable",
			err:  fmt.Errorf("poll: %w", ErrTransportTimeout),
			want: true,
		},
		{
			name: "framing error retryable",
			err:  newFramingError(ErrChecksumMismatch, nil),
			want: true,
		},
		{
			name: "antenna fault not retryable",
			err:  newReaderError(ReaderErrAntennaFault),
			want: false,
		},
		{
			name: "DSP timeout retryable",
			err:  newReaderError(ReaderErrDSPTimeout),
			want: true,
		},
		{
			name: "usage error not retryable",
			err:  newUsageError("SetBaudRate", ErrUnsupportedBaudRate),
			want: false,
		},
		{
			name: "retryable transport error",
			err: &TransportError{
				Op:        "read",
				Port:      "/dev/ttyUSB0",
				Err:       errors.New("transient failure"),
				Type:      ErrorTypeTransient,
				Retryable: true,
			},
			want: true,
		},
		{
			name: "non-retryable transport error",
			err: &TransportError{
				Op:        "open",
				Port:      "/dev/ttyUSB0",
				Err:       errors.New("permission denied"),
				Type:      ErrorTypePermanent,
				Retryable: false,
			},
			want: false,
		},
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{
			name: "nil error",
			err:  nil,
			want: ErrorTypePermanent,
		},
		{
			name: "transport timeout",
			err:  ErrTransportTimeout,
			want: ErrorTypeTimeout,
		},
		{
			name: "transport read",
			err:  ErrTransportRead,
			want: ErrorTypeTransient,
		},
		{
			name: "transport write",
			err:  ErrTransportWrite,
			want: ErrorTypeTransient,
		},
		{
			name: "communication failed",
			err:  ErrCommunicationFailed,
			want: ErrorTypeTransient,
		},
		{
			name: "checksum mismatch",
			err:  ErrChecksumMismatch,
			want: ErrorTypeTransient,
		},
		{
			name: "truncated frame",
			err:  ErrTruncatedFrame,
			want: ErrorTypeTransient,
		},
		{
			name: "device not found",
			err:  ErrDeviceNotFound,
			want: ErrorTypePermanent,
		},
		{
			name: "unknown error",
			err:  errors.New("unknown"),
			want: ErrorTypePermanent,
		},
		{
			name: "framing error is transient",
			err:  newFramingError(ErrMissingStartMarker, []byte{0x02}),
			want: ErrorTypeTransient,
		},
		{
			name: "reader error is permanent",
			err:  newReaderError(ReaderErrZeroPower),
			want: ErrorTypePermanent,
		},
		{
			name: "reader DSP timeout maps to timeout",
			err:  newReaderError(ReaderErrDSPTimeout),
			want: ErrorTypeTimeout,
		},
		{
			name: "usage error is permanent",
			err:  newUsageError("ChangeParamBlock", ErrAntennaRequired),
			want: ErrorTypePermanent,
		},
		{
			name: "transport error carries its own type",
			err: &TransportError{
				Op:   "read",
				Port: "192.0.2.10:4001",
				Err:  errors.New("reset by peer"),
				Type: ErrorTypeTransient,
			},
			want: ErrorTypeTransient,
		},
		{
			name: "wrapped transport error timeout",
			err:  fmt.Errorf("status: %w", NewTimeoutError("read", "/dev/ttyUSB0")),
			want: ErrorTypeTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := GetErrorType(tt.err)
			if got != tt.want {
				t.Errorf("GetErrorType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTransportError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err           error
		name          string
		op            string
		port          string
		errType       ErrorType
		wantRetryable bool
	}{
		{
			name:          "permanent transport error",
			op:            "open",
			port:          "/dev/ttyUSB0",
			err:           errors.New("permission denied"),
			errType:       ErrorTypePermanent,
			wantRetryable: false,
		},
		{
			name:          "transient with empty port",
			op:            "write",
			port:          "",
			err:           errors.New("connection lost"),
			errType:       ErrorTypeTransient,
			wantRetryable: true,
		},
		{
			name:          "timeout error",
			op:            "read",
			port:          "192.0.2.10:4001",
			err:           ErrTransportTimeout,
			errType:       ErrorTypeTimeout,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := NewTransportError(tt.op, tt.port, tt.err, tt.errType)

			if te.Op != tt.op {
				t.Errorf("Op = %q, want %q", te.Op, tt.op)
			}
			if te.Port != tt.port {
				t.Errorf("Port = %q, want %q", te.Port, tt.port)
			}
			if !errors.Is(te.Err, tt.err) {
				t.Errorf("Err = %v, want %v", te.Err, tt.err)
			}
			if te.Type != tt.errType {
				t.Errorf("Type = %v, want %v", te.Type, tt.errType)
			}
			if te.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", te.Retryable, tt.wantRetryable)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		te   *TransportError
		want []string // Substrings that should be present
	}{
		{
			name: "with port",
			te: &TransportError{
				Err:  errors.New("connection failed"),
				Op:   "read",
				Port: "/dev/ttyUSB0",
			},
			want: []string{"read", "/dev/ttyUSB0", "connection failed"},
		},
		{
			name: "without port",
			te: &TransportError{
				Err:  errors.New("device busy"),
				Op:   "write",
				Port: "",
			},
			want: []string{"write", "device busy"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.te.Error()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Error() = %q, should contain %q", got, substr)
				}
			}
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	t.Parallel()
	originalErr := errors.New("original error")
	te := &TransportError{
		Err:  originalErr,
		Op:   "test",
		Port: "/dev/test",
	}

	unwrapped := te.Unwrap()
	if !errors.Is(unwrapped, originalErr) {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
}

func TestNewTimeoutError(t *testing.T) {
	t.Parallel()
	te := NewTimeoutError("read", "/dev/ttyUSB0")

	if te.Op != "read" {
		t.Errorf("Op = %q, want %q", te.Op, "read")
	}
	if te.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q, want %q", te.Port, "/dev/ttyUSB0")
	}
	if te.Type != ErrorTypeTimeout {
		t.Errorf("Type = %v, want %v", te.Type, ErrorTypeTimeout)
	}
	if !te.Retryable {
		t.Error("Retryable should be true for timeout errors")
	}
	if !errors.Is(te, ErrTransportTimeout) {
		t.Error("timeout errors should match ErrTransportTimeout")
	}
}

func TestReaderErrorMessages(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		wantMessage string
		code        uint8
	}{
		{name: "invalid parameters", code: ReaderErrInvalidParams, wantMessage: "Invalid parameters"},
		{name: "insufficient data", code: ReaderErrInsufficientData, wantMessage: "Insufficient data"},
		{name: "command not supported", code: ReaderErrCmdNotSupported, wantMessage: "Command not supported"},
		{name: "antenna fault", code: ReaderErrAntennaFault, wantMessage: "Antenna Fault"},
		{name: "DSP timeout", code: ReaderErrDSPTimeout, wantMessage: "DSP timeout"},
		{name: "DSP error", code: ReaderErrDSPError, wantMessage: "DSP error"},
		{name: "DSP idle", code: ReaderErrDSPIdle, wantMessage: "DSP idle"},
		{name: "zero power", code: ReaderErrZeroPower, wantMessage: "Zero power"},
		{name: "undefined", code: ReaderErrUndefined, wantMessage: "Undefined error"},
		{name: "unknown code falls back to undefined", code: 0x42, wantMessage: "Undefined error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			re := newReaderError(tt.code)
			if re.Code != tt.code {
				t.Errorf("Code = %#02x, want %#02x", re.Code, tt.code)
			}
			if !strings.Contains(re.Message, tt.wantMessage) {
				t.Errorf("Message = %q, should contain %q", re.Message, tt.wantMessage)
			}
			if !strings.Contains(re.Error(), tt.wantMessage) {
				t.Errorf("Error() = %q, should contain %q", re.Error(), tt.wantMessage)
			}
		})
	}
}

func TestUsageError(t *testing.T) {
	t.Parallel()
	ue := newUsageError("SetBaudRate", ErrUnsupportedBaudRate)

	if !errors.Is(ue, ErrUnsupportedBaudRate) {
		t.Error("UsageError should unwrap to its sentinel")
	}
	if !strings.Contains(ue.Error(), "SetBaudRate") {
		t.Errorf("Error() = %q, should contain the operation name", ue.Error())
	}

	var usageErr *UsageError
	if !errors.As(fmt.Errorf("wrapped: %w", ue), &usageErr) {
		t.Error("errors.As should find *UsageError through wrapping")
	}
}

func TestFramingError(t *testing.T) {
	t.Parallel()
	raw := []byte{0x02, 0x04, 0x06, 0x25, 0x00, 0x6B, 0x9A}
	fe := newFramingError(ErrMissingStartMarker, raw)

	if !errors.Is(fe, ErrMissingStartMarker) {
		t.Error("FramingError should unwrap to its sentinel")
	}
	if !strings.Contains(fe.Error(), "start marker") {
		t.Errorf("Error() = %q, should mention the cause", fe.Error())
	}
	if len(fe.Raw) != len(raw) {
		t.Errorf("Raw length = %d, want %d", len(fe.Raw), len(raw))
	}
}
