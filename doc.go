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

/*
Package matrics provides a pure Go library for driving Matrics UHF RFID
reader nodes over their framed serial protocol.

A reader node carries up to four antenna ports and sits on a shared
multi-drop bus, addressed by a one-byte node address. This library
implements the full command set — field inventory, continuous
(constant-read) streaming, per-antenna parameter blocks, and node
administration — over any byte transport.

Features:
  - Multiple transport support: direct serial, TCP serial bridges
  - Multi-drop bus addressing with per-call node selection
  - Four antenna ports with per-port parameter configuration
  - One-shot field reads and unsolicited constant-read streaming
  - EPC Class 1 Gen 2 command variants alongside the classic set
  - Comprehensive error handling with vendor error codes

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-matrics"
	    "github.com/ZaparooProject/go-matrics/transport/serial"
	)

	// Open the serial port the bus hangs off
	transport, err := serial.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}

	// Create a reader session; connecting stops any constant read a
	// previous session left running
	reader, err := matrics.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	defer reader.Close()

	// One-shot inventory of every tag in the field
	fr, err := reader.ReadFullFieldUnique()
	if err != nil {
	    log.Fatal(err)
	}
	for _, tag := range fr.UniqueTags {
	    fmt.Println(tag.ID)
	}

	// Or stream reads continuously
	if err := reader.StartConstantRead(matrics.ConstantReadConfig{}); err != nil {
	    log.Fatal(err)
	}
	for {
	    fr, err := reader.ConstantRead()
	    if err != nil {
	        break // transport failure, the stream is gone
	    }
	    if fr.Err != nil {
	        continue // one bad frame, keep draining
	    }
	    for _, tag := range fr.Tags {
	        fmt.Println(tag.ID)
	    }
	}

Addressing:

Session defaults are set when the reader is created and overridden per
call:

	reader, _ := matrics.New(transport,
	    matrics.WithNodeAddress(0x04),
	    matrics.WithAntenna(matrics.Antenna2),
	)

	// Talk to another node on the same bus for one call
	status, err := reader.GetReaderStatus(matrics.OnNode(0x07))

	// Scan a different antenna port for one call
	fr, err := reader.ReadFullField(matrics.OnAntenna(matrics.Antenna3))

Transport Selection:

The library supports two transport layers:

  - serial: Direct connection through a serial port or USB adapter
  - tcp: Serial device servers and network bridges

Error Handling:

All operations return meaningful errors that can be inspected:

	if errors.Is(err, matrics.ErrTransportTimeout) {
	    // Handle timeout
	}

	var readerErr *matrics.ReaderError
	if errors.As(err, &readerErr) {
	    // Vendor error code from the device, e.g. antenna fault
	    fmt.Println(readerErr.Code, readerErr.Message)
	}

Thread Safety:

Reader operations are not thread-safe. If you need concurrent access,
implement appropriate synchronization in your application.
*/
package matrics
