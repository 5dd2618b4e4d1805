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

	"github.com/ZaparooProject/go-matrics/internal/frame"
)

// Transport level sentinel errors
var (
	// ErrTransportTimeout indicates a read or write timed out
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrTransportRead indicates a read from the transport failed
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates a write to the transport failed
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportNotConnected indicates the transport is not connected
	ErrTransportNotConnected = errors.New("transport not connected")
	// ErrDeviceNotFound indicates the serial port or bridge host is absent
	ErrDeviceNotFound = errors.New("device not found")
	// ErrCommunicationFailed indicates an unclassified link failure
	ErrCommunicationFailed = errors.New("communication failed")
)

// Framing sentinel errors. These are shared with the internal frame codec
// so errors.Is matches across the package boundary.
var (
	// ErrMissingStartMarker indicates a frame that does not open with 0x01
	ErrMissingStartMarker = frame.ErrMissingStartMarker
	// ErrChecksumMismatch indicates the frame checksum did not validate
	ErrChecksumMismatch = frame.ErrChecksumMismatch
	// ErrTruncatedFrame indicates fewer bytes than the smallest legal frame
	ErrTruncatedFrame = frame.ErrTruncated
	// ErrLengthMismatch indicates the length byte disagrees with the frame
	ErrLengthMismatch = frame.ErrLengthMismatch
)

// Caller precondition sentinel errors, surfaced wrapped in *UsageError
// before any transport traffic occurs.
var (
	// ErrAntennaRequired indicates an operation that cannot fall back to
	// the session default antenna
	ErrAntennaRequired = errors.New("antenna required")
	// ErrSerialNumberRequired indicates a node addressing operation was
	// called without a reader serial number
	ErrSerialNumberRequired = errors.New("serial number required")
	// ErrInvalidSerialNumber indicates a serial number that does not parse
	// to exactly eight identity bytes
	ErrInvalidSerialNumber = errors.New("invalid serial number")
	// ErrNotStreaming indicates a constant read poll without a prior start
	ErrNotStreaming = errors.New("constant read not started")
	// ErrUnsupportedBaudRate indicates a rate missing from the baud table
	ErrUnsupportedBaudRate = errors.New("unsupported baud rate")
	// ErrInvalidDwellTime indicates a dwell time outside 6..150
	ErrInvalidDwellTime = errors.New("dwell time out of range")
	// ErrInvalidChannel indicates a channel outside 0..16
	ErrInvalidChannel = errors.New("channel out of range")
	// ErrInvalidAntenna indicates an antenna byte outside the four ports
	ErrInvalidAntenna = errors.New("invalid antenna")
	// ErrInvalidTagID indicates tag identity text that is not even-length hex
	ErrInvalidTagID = errors.New("invalid tag identity")
	// ErrInvalidPowerCount indicates per-antenna power levels that do not
	// line up with the selected antennas
	ErrInvalidPowerCount = errors.New("power levels do not match antennas")
	// ErrDataTooLarge indicates a payload beyond the frame length budget
	ErrDataTooLarge = errors.New("payload too large")
)

// Vendor error codes carried in the payload byte of an error status
// response.
const (
	ReaderErrInvalidParams    uint8 = 0xF0
	ReaderErrInsufficientData uint8 = 0xF1
	ReaderErrCmdNotSupported  uint8 = 0xF2
	ReaderErrAntennaFault     uint8 = 0xF3
	ReaderErrDSPTimeout       uint8 = 0xF4
	ReaderErrDSPError         uint8 = 0xF5
	ReaderErrDSPIdle          uint8 = 0xF6
	ReaderErrZeroPower        uint8 = 0xF7
	ReaderErrUndefined        uint8 = 0xFF
)

// readerErrorMessages is the fixed vendor code to message table. Codes the
// firmware has not documented fall through to the undefined entry.
var readerErrorMessages = map[uint8]string{
	ReaderErrInvalidParams:    "Invalid parameters",
	ReaderErrInsufficientData: "Insufficient data for command",
	ReaderErrCmdNotSupported:  "Command not supported",
	ReaderErrAntennaFault:     "Antenna Fault",
	ReaderErrDSPTimeout:       "DSP timeout",
	ReaderErrDSPError:         "DSP error",
	ReaderErrDSPIdle:          "DSP idle",
	ReaderErrZeroPower:        "Zero power",
	ReaderErrUndefined:        "Undefined error",
}

func readerErrorMessage(code uint8) string {
	if msg, ok := readerErrorMessages[code]; ok {
		return msg
	}
	return readerErrorMessages[ReaderErrUndefined]
}

// ErrorType categorizes errors for caller level retry decisions. The engine
// itself never retries.
type ErrorType int

const (
	// ErrorTypeTransient indicates a temporary error that may succeed on retry
	ErrorTypeTransient ErrorType = iota
	// ErrorTypeTimeout indicates the operation timed out
	ErrorTypeTimeout
	// ErrorTypePermanent indicates an error that will not resolve on its own
	ErrorTypePermanent
)

// TransportError wraps a transport failure with operation context.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError, deriving retryability from
// the error type.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a TransportError for a timed out operation.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// FramingError reports a malformed packet: a bad start marker, a length
// byte that disagrees with the frame, or a checksum mismatch. The raw frame
// is retained for debugging. Framing failures abort the operation and are
// never retried internally.
type FramingError struct {
	Err error
	Raw []byte
}

func (e *FramingError) Error() string {
	return "framing: " + e.Err.Error()
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

func newFramingError(err error, raw []byte) *FramingError {
	return &FramingError{Err: err, Raw: raw}
}

// ReaderError is an error status reported by the reader firmware, carrying
// the vendor code and its documented message.
type ReaderError struct {
	Message string
	Code    uint8
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("reader error %#02x: %s", e.Code, e.Message)
}

func newReaderError(code uint8) *ReaderError {
	return &ReaderError{Code: code, Message: readerErrorMessage(code)}
}

// UsageError reports a caller precondition violation. It is raised before
// any bytes reach the transport.
type UsageError struct {
	Err error
	Op  string
}

func (e *UsageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func newUsageError(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

// IsRetryable reports whether the operation that produced err may succeed
// if issued again. Retrying is a caller policy; nothing inside the session
// acts on this.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable
	}
	var framingErr *FramingError
	if errors.As(err, &framingErr) {
		// A clean reissue of the request may yield an intact frame.
		return true
	}
	var readerErr *ReaderError
	if errors.As(err, &readerErr) {
		return readerErr.Code == ReaderErrDSPTimeout
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return false
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrMissingStartMarker),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrTruncatedFrame),
		errors.Is(err, ErrLengthMismatch):
		return true
	default:
		return false
	}
}

// GetErrorType returns the classification of err.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Type
	}
	var readerErr *ReaderError
	if errors.As(err, &readerErr) {
		if readerErr.Code == ReaderErrDSPTimeout {
			return ErrorTypeTimeout
		}
		return ErrorTypePermanent
	}
	var framingErr *FramingError
	if errors.As(err, &framingErr) {
		return ErrorTypeTransient
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ErrorTypePermanent
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrMissingStartMarker),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrTruncatedFrame),
		errors.Is(err, ErrLengthMismatch):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
