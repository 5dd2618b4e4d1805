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

// matricspoll watches a Matrics reader and emits one event line per
// tag arrival and removal. It is the headless counterpart of
// matricsmon, meant to be piped into whatever consumes the events.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/polling"
	"github.com/ZaparooProject/go-matrics/transport/serial"
	"github.com/ZaparooProject/go-matrics/transport/tcp"
	"github.com/rs/zerolog"
)

func parseConfig(args []string) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("matricspoll", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file; flags override its keys")
	device := fs.String("device", "", "Serial device path (e.g. /dev/ttyUSB0)")
	tcpAddr := fs.String("tcp", "", "TCP serial-bridge address (host:port)")
	baud := fs.Int("baud", cfg.baud, "Serial baud rate")
	node := fs.Uint("node", uint(cfg.node), "Reader node address")
	antenna := fs.Int("antenna", 1, "Antenna port (1-4)")
	timeout := fs.Duration("timeout", cfg.timeout, "Per-read transport timeout")
	interval := fs.Duration("interval", cfg.pollInterval, "Delay between scan cycles")
	removal := fs.Duration("removal-timeout", cfg.removalTimeout,
		"How long a tag may go unseen before it is reported removed")
	strategy := fs.String("strategy", cfg.strategy, "Acquisition strategy: auto, stream or scan")
	epc := fs.Bool("epc", false, "Use the EPC command family for scans")
	debug := fs.Bool("debug", false, "Log every raw frame in hex")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := applyFile(&cfg, *configPath); err != nil {
			return cfg, err
		}
	}

	// Flags the user actually passed win over the file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.device = *device
		case "tcp":
			cfg.tcpAddr = *tcpAddr
		case "baud":
			cfg.baud = *baud
		case "node":
			if *node > 0xFF {
				flagErr = fmt.Errorf("node %d out of range", *node)
				return
			}
			cfg.node = uint8(*node)
		case "antenna":
			a, err := antennaFromNumber(*antenna)
			if err != nil {
				flagErr = err
				return
			}
			cfg.antenna = a
		case "timeout":
			cfg.timeout = *timeout
		case "interval":
			cfg.pollInterval = *interval
		case "removal-timeout":
			cfg.removalTimeout = *removal
		case "strategy":
			cfg.strategy = *strategy
		case "epc":
			cfg.epc = *epc
		case "debug":
			cfg.debug = *debug
		}
	})
	if flagErr != nil {
		return cfg, flagErr
	}

	return cfg, cfg.validate()
}

func newTransport(cfg *config) (matrics.Transport, error) {
	if cfg.tcpAddr != "" {
		transport, err := tcp.New(cfg.tcpAddr)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.tcpAddr, err)
		}
		return transport, nil
	}
	transport, err := serial.NewAtBaudRate(cfg.device, cfg.baud)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.device, err)
	}
	return transport, nil
}

func monitorStrategy(name string) polling.ReadStrategy {
	switch name {
	case "stream":
		return polling.StrategyStream
	case "scan":
		return polling.StrategyScan
	default:
		return polling.StrategyAuto
	}
}

func run(cfg config, logger zerolog.Logger) error {
	transport, err := newTransport(&cfg)
	if err != nil {
		return err
	}

	opts := []matrics.Option{
		matrics.WithNodeAddress(cfg.node),
		matrics.WithAntenna(cfg.antenna),
		matrics.WithTimeout(cfg.timeout),
		matrics.WithLogger(logger),
	}
	if cfg.debug {
		opts = append(opts, matrics.WithDebug())
	}
	reader, err := matrics.New(transport, opts...)
	if err != nil {
		closeErr := transport.Close()
		return errors.Join(fmt.Errorf("open reader: %w", err), closeErr)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn().Err(err).Msg("reader close")
		}
	}()

	monitor, err := polling.NewMonitor(reader, &polling.Config{
		Strategy:       monitorStrategy(cfg.strategy),
		PollInterval:   cfg.pollInterval,
		RemovalTimeout: cfg.removalTimeout,
		EPC:            cfg.epc,
	})
	if err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	monitor.OnTagArrival = func(tag *matrics.Tag) {
		logger.Info().
			Str("id", tag.ID).
			Str("class", tag.Class.String()).
			Msg("tag arrival")
	}
	monitor.OnTagRemoval = func(id string) {
		logger.Info().Str("id", id).Msg("tag removal")
	}
	monitor.OnError = func(err error) {
		logger.Error().Err(err).Msg("read failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("strategy", string(monitor.Strategy())).
		Uint8("node", cfg.node).
		Str("antenna", cfg.antenna.String()).
		Msg("monitoring")

	if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("shutting down")
	return nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "matricspoll:", err)
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	if cfg.debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}
