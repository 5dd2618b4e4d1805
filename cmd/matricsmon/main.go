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

// matricsmon is a live terminal view of the tags a Matrics reader
// sees: a table of present tags with their dwell ages, scan and error
// counters, and a short event log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/polling"
	"github.com/ZaparooProject/go-matrics/transport/serial"
	"github.com/ZaparooProject/go-matrics/transport/tcp"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	device := flag.String("device", "", "Serial device path (e.g. /dev/ttyUSB0)")
	tcpAddr := flag.String("tcp", "", "TCP serial-bridge address (host:port)")
	baud := flag.Int("baud", matrics.DefaultBaudRate, "Serial baud rate")
	node := flag.Uint("node", uint(matrics.DefaultNode), "Reader node address")
	antenna := flag.Int("antenna", 1, "Antenna port (1-4)")
	interval := flag.Duration("interval", 250*time.Millisecond, "Delay between scans")
	removal := flag.Duration("removal-timeout", 1500*time.Millisecond,
		"How long a tag may go unseen before it is dropped from the table")
	timeout := flag.Duration("timeout", matrics.DefaultTimeout, "Per-read transport timeout")
	epc := flag.Bool("epc", false, "Use the EPC command family for scans")
	flag.Parse()

	if err := run(*device, *tcpAddr, *baud, *node, *antenna,
		*interval, *removal, *timeout, *epc); err != nil {
		fmt.Fprintln(os.Stderr, "matricsmon:", err)
		os.Exit(1)
	}
}

func run(device, tcpAddr string, baud int, node uint, antennaNum int,
	interval, removal, timeout time.Duration, epc bool,
) error {
	transport, label, err := openTransport(device, tcpAddr, baud)
	if err != nil {
		return err
	}
	if node > 0xFF {
		closeErr := transport.Close()
		return errors.Join(fmt.Errorf("node %d out of range", node), closeErr)
	}
	if antennaNum < 1 || antennaNum > matrics.NumAntennas {
		closeErr := transport.Close()
		return errors.Join(fmt.Errorf("antenna %d out of range 1-%d",
			antennaNum, matrics.NumAntennas), closeErr)
	}
	antenna := matrics.Antenna1 + matrics.Antenna(antennaNum-1)

	reader, err := matrics.New(transport,
		matrics.WithNodeAddress(uint8(node)),
		matrics.WithAntenna(antenna),
		matrics.WithTimeout(timeout),
	)
	if err != nil {
		closeErr := transport.Close()
		return errors.Join(fmt.Errorf("open reader: %w", err), closeErr)
	}
	defer func() { _ = reader.Close() }()

	monitor, err := polling.NewMonitor(reader, &polling.Config{
		Strategy:       polling.StrategyManual,
		RemovalTimeout: removal,
		EPC:            epc,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(newModel(label, antenna), tea.WithAltScreen())

	monitor.OnTagArrival = func(tag *matrics.Tag) {
		p.Send(eventMsg{text: fmt.Sprintf("arrival %s (%s)", tag.ID, tag.Class)})
	}
	monitor.OnTagRemoval = func(id string) {
		p.Send(eventMsg{text: "removal " + id})
	}
	monitor.OnError = func(err error) {
		p.Send(eventMsg{text: "error " + err.Error(), isError: true})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scanLoop(ctx, monitor, p, interval)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func openTransport(device, tcpAddr string, baud int) (matrics.Transport, string, error) {
	switch {
	case device != "" && tcpAddr != "":
		return nil, "", errors.New("-device and -tcp are mutually exclusive")
	case tcpAddr != "":
		transport, err := tcp.New(tcpAddr)
		if err != nil {
			return nil, "", fmt.Errorf("connect %s: %w", tcpAddr, err)
		}
		return transport, tcpAddr, nil
	case device != "":
		transport, err := serial.NewAtBaudRate(device, baud)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", device, err)
		}
		return transport, device, nil
	default:
		return nil, "", errors.New("no reader given: set -device or -tcp")
	}
}

// scanLoop owns the reader session: one scan per interval, then a
// snapshot pushed into the TUI. Event callbacks fire inside Scan, on
// this goroutine, so monitor state is never touched concurrently.
func scanLoop(ctx context.Context, monitor *polling.Monitor, p *tea.Program, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var scans, scanErrors int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		scans++
		if err := monitor.Scan(ctx); err != nil {
			scanErrors++
			p.Send(eventMsg{text: "error " + err.Error(), isError: true})
		}
		p.Send(snapshotMsg{
			tags:   monitor.PresentTags(),
			scans:  scans,
			errors: scanErrors,
			taken:  time.Now(),
		})
	}
}
