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

package polling

import (
	"errors"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
)

// ReadStrategy selects how the monitor acquires tag readings
type ReadStrategy string

const (
	// StrategyAuto starts a constant-read stream and falls back to
	// repeated full-field scans after consecutive stream failures.
	StrategyAuto ReadStrategy = "auto"

	// StrategyStream uses constant-read streaming only, with no
	// fallback. Stream failures are reported and retried.
	StrategyStream ReadStrategy = "stream"

	// StrategyScan issues a full-field read every poll interval and
	// never starts a stream.
	StrategyScan ReadStrategy = "scan"

	// StrategyManual disables the Run loop's own polling; the
	// application calls Scan when it wants a cycle.
	StrategyManual ReadStrategy = "manual"
)

// Config tunes a Monitor.
type Config struct {
	// Strategy selects the acquisition mode. Default StrategyAuto.
	Strategy ReadStrategy

	// PollInterval is the delay between scan cycles. It also bounds
	// how long a stream poll waits before the presence sweep runs.
	// Default 250ms.
	PollInterval time.Duration

	// RemovalTimeout is how long a tag may go unseen before it is
	// reported removed. Default 1.5s.
	RemovalTimeout time.Duration

	// MaxStreamFailures is the consecutive stream failure count that
	// trips StrategyAuto over to scanning. Default 3.
	MaxStreamFailures int

	// Stream tunes the constant-read command for the streaming
	// strategies.
	Stream matrics.ConstantReadConfig

	// CallOptions are applied to every reader operation the monitor
	// issues, typically OnNode and OnAntenna.
	CallOptions []matrics.CallOption

	// EPC switches scan cycles to the EPC command family.
	EPC bool
}

// DefaultConfig returns the monitor defaults
func DefaultConfig() *Config {
	return &Config{
		Strategy:          StrategyAuto,
		PollInterval:      250 * time.Millisecond,
		RemovalTimeout:    1500 * time.Millisecond,
		MaxStreamFailures: 3,
	}
}

// ErrInvalidConfig indicates a Config field outside its legal range
var ErrInvalidConfig = errors.New("invalid monitor config")

// Validate checks the configuration ranges
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyAuto, StrategyStream, StrategyScan, StrategyManual, "":
	default:
		return ErrInvalidConfig
	}
	if c.PollInterval < 0 || c.RemovalTimeout < 0 || c.MaxStreamFailures < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if len(c.CallOptions) > 0 {
		clone.CallOptions = make([]matrics.CallOption, len(c.CallOptions))
		copy(clone.CallOptions, c.CallOptions)
	}
	return &clone
}

// normalize fills zero fields with the defaults
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.RemovalTimeout == 0 {
		c.RemovalTimeout = def.RemovalTimeout
	}
	if c.MaxStreamFailures == 0 {
		c.MaxStreamFailures = def.MaxStreamFailures
	}
}

// strategyState tracks which acquisition mode is active and how the
// stream has been behaving.
type strategyState struct {
	lastFailure     time.Time
	current         ReadStrategy
	failureCount    int
	maxFailures     int
	fallbackEnabled bool
}

func newStrategyState(cfg *Config) *strategyState {
	current := cfg.Strategy
	if current == StrategyAuto {
		current = StrategyStream
	}
	return &strategyState{
		current:         current,
		maxFailures:     cfg.MaxStreamFailures,
		fallbackEnabled: cfg.Strategy == StrategyAuto,
	}
}

// recordFailure notes a failed stream cycle and trips the fallback to
// scanning once the consecutive failure budget is spent. Only
// StrategyAuto falls back; an explicit StrategyStream keeps retrying.
func (s *strategyState) recordFailure() {
	s.failureCount++
	s.lastFailure = time.Now()

	if s.fallbackEnabled &&
		s.current == StrategyStream &&
		s.failureCount >= s.maxFailures {
		s.current = StrategyScan
	}
}

// recordSuccess resets the consecutive failure count
func (s *strategyState) recordSuccess() {
	s.failureCount = 0
}

// currentStrategy returns the active acquisition mode
func (s *strategyState) currentStrategy() ReadStrategy {
	return s.current
}
