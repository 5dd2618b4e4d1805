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

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/transport/serial"
	"github.com/ZaparooProject/go-matrics/transport/tcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagPort    string
	flagTCP     string
	flagBaud    int
	flagNode    uint8
	flagAntenna int
	flagTimeout time.Duration
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "matricsctl",
	Short: "Control a Matrics RFID reader",
	Long: `matricsctl talks to a Matrics fixed-position RFID reader over a serial
port or a TCP serial-bridge.

Connection:
  Serial: --port /dev/ttyUSB0 [--baud 230400]
  TCP:    --tcp reader-host:4001

Every command addresses the node given with --node (default 1) and,
where an antenna matters, the port given with --antenna (default 1).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagPort, "port", "p", "", "Serial port device")
	pf.StringVar(&flagTCP, "tcp", "", "TCP serial-bridge address (host:port)")
	pf.IntVarP(&flagBaud, "baud", "b", matrics.DefaultBaudRate, "Baud rate (serial only)")
	pf.Uint8VarP(&flagNode, "node", "n", matrics.DefaultNode, "Reader node address")
	pf.IntVarP(&flagAntenna, "antenna", "a", 1, "Antenna port (1-4)")
	pf.DurationVar(&flagTimeout, "timeout", matrics.DefaultTimeout, "Per-read transport timeout")
	pf.BoolVar(&flagDebug, "debug", false, "Log every raw frame in hex")
}

// openReader connects per the persistent flags. The caller must invoke
// the returned closer once done with the session.
func openReader() (*matrics.Reader, func(), error) {
	transport, err := openTransport()
	if err != nil {
		return nil, nil, err
	}

	antenna, err := antennaFromNumber(flagAntenna)
	if err != nil {
		closeErr := transport.Close()
		return nil, nil, errors.Join(err, closeErr)
	}

	opts := []matrics.Option{
		matrics.WithNodeAddress(flagNode),
		matrics.WithAntenna(antenna),
		matrics.WithTimeout(flagTimeout),
	}
	if flagDebug {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
		opts = append(opts, matrics.WithLogger(logger), matrics.WithDebug())
	}

	reader, err := matrics.New(transport, opts...)
	if err != nil {
		closeErr := transport.Close()
		return nil, nil, errors.Join(fmt.Errorf("open reader: %w", err), closeErr)
	}

	closer := func() {
		if err := reader.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "matricsctl: close:", err)
		}
	}
	return reader, closer, nil
}

func openTransport() (matrics.Transport, error) {
	switch {
	case flagPort != "" && flagTCP != "":
		return nil, errors.New("--port and --tcp are mutually exclusive")
	case flagTCP != "":
		transport, err := tcp.New(flagTCP)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", flagTCP, err)
		}
		return transport, nil
	case flagPort != "":
		transport, err := serial.NewAtBaudRate(flagPort, flagBaud)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", flagPort, err)
		}
		return transport, nil
	default:
		return nil, errors.New("no reader given: set --port or --tcp")
	}
}

// antennaFromNumber maps the human port number 1-4 to the wire antenna
// identifier.
func antennaFromNumber(n int) (matrics.Antenna, error) {
	if n < 1 || n > matrics.NumAntennas {
		return 0, fmt.Errorf("antenna %d out of range 1-%d", n, matrics.NumAntennas)
	}
	return matrics.Antenna1 + matrics.Antenna(n-1), nil
}
