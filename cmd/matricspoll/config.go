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
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	matrics "github.com/ZaparooProject/go-matrics"
)

// config holds everything the daemon needs to reach a reader and run
// the presence monitor.
type config struct {
	device         string
	tcpAddr        string
	strategy       string
	baud           int
	node           uint8
	antenna        matrics.Antenna
	timeout        time.Duration
	pollInterval   time.Duration
	removalTimeout time.Duration
	epc            bool
	debug          bool
}

func defaultConfig() config {
	return config{
		baud:           matrics.DefaultBaudRate,
		node:           matrics.DefaultNode,
		antenna:        matrics.DefaultAntenna,
		timeout:        matrics.DefaultTimeout,
		pollInterval:   250 * time.Millisecond,
		removalTimeout: 1500 * time.Millisecond,
		strategy:       "auto",
	}
}

// fileConfig is the TOML key mapping for the config file. Every key is
// optional; keys absent from the file leave the flag or built-in value
// untouched.
type fileConfig struct {
	Device         string `toml:"device"`
	TCPAddr        string `toml:"tcp_addr"`
	Strategy       string `toml:"strategy"`
	Baud           int    `toml:"baud"`
	Node           int    `toml:"node"`
	Antenna        int    `toml:"antenna"`
	Timeout        string `toml:"timeout"`
	PollInterval   string `toml:"poll_interval"`
	RemovalTimeout string `toml:"removal_timeout"`
	EPC            bool   `toml:"epc"`
	Debug          bool   `toml:"debug"`
}

// applyFile overlays values from a TOML file onto cfg. Only keys the
// file actually defines are applied, so an absent key never clobbers a
// flag or default with a zero value.
func applyFile(cfg *config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("device") {
		cfg.device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("tcp_addr") {
		cfg.tcpAddr = strings.TrimSpace(raw.TCPAddr)
	}
	if meta.IsDefined("strategy") {
		cfg.strategy = strings.TrimSpace(raw.Strategy)
	}
	if meta.IsDefined("baud") {
		cfg.baud = raw.Baud
	}
	if meta.IsDefined("node") {
		if raw.Node < 0 || raw.Node > 0xFF {
			return fmt.Errorf("config %s: node %d out of range", path, raw.Node)
		}
		cfg.node = uint8(raw.Node)
	}
	if meta.IsDefined("antenna") {
		antenna, err := antennaFromNumber(raw.Antenna)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		cfg.antenna = antenna
	}
	if meta.IsDefined("timeout") {
		if err := parseTOMLDuration(&cfg.timeout, "timeout", raw.Timeout); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if meta.IsDefined("poll_interval") {
		if err := parseTOMLDuration(&cfg.pollInterval, "poll_interval", raw.PollInterval); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if meta.IsDefined("removal_timeout") {
		if err := parseTOMLDuration(&cfg.removalTimeout, "removal_timeout", raw.RemovalTimeout); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if meta.IsDefined("epc") {
		cfg.epc = raw.EPC
	}
	if meta.IsDefined("debug") {
		cfg.debug = raw.Debug
	}
	return nil
}

func parseTOMLDuration(dst *time.Duration, key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// antennaFromNumber maps the human port number 1-4 to the wire antenna
// identifier.
func antennaFromNumber(n int) (matrics.Antenna, error) {
	if n < 1 || n > matrics.NumAntennas {
		return 0, fmt.Errorf("antenna %d out of range 1-%d", n, matrics.NumAntennas)
	}
	return matrics.Antenna1 + matrics.Antenna(n-1), nil
}

func (c *config) validate() error {
	if c.device == "" && c.tcpAddr == "" {
		return fmt.Errorf("no reader given: set -device or -tcp")
	}
	if c.device != "" && c.tcpAddr != "" {
		return fmt.Errorf("-device and -tcp are mutually exclusive")
	}
	switch c.strategy {
	case "auto", "stream", "scan":
	default:
		return fmt.Errorf("unknown strategy %q (auto, stream or scan)", c.strategy)
	}
	return nil
}
