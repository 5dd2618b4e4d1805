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

// Package polling layers tag presence tracking on top of a matrics
// reader session. A Monitor repeatedly acquires field readings, by
// constant-read streaming or by full-field scans, and turns them into
// arrival and removal events with a configurable grace window.
package polling

import (
	"context"
	"errors"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
)

// ErrManualStrategy indicates Run was called on a monitor configured
// for StrategyManual, whose cycles are driven by Scan instead.
var ErrManualStrategy = errors.New("monitor is in manual strategy; call Scan")

// Monitor tracks tag presence over a reader session.
//
// The monitor owns all access to its reader while Run is active; do
// not issue operations on the same session from other goroutines.
// Callbacks fire on Run's goroutine.
type Monitor struct {
	reader *matrics.Reader
	config *Config
	strat  *strategyState
	state  *fieldState

	// OnTagArrival fires once when a tag enters the field
	OnTagArrival func(tag *matrics.Tag)
	// OnTagRemoval fires once the tag has gone unseen past the
	// removal timeout.
	OnTagRemoval func(id string)
	// OnError fires for reader failures the monitor absorbs. Scan
	// timeouts are empty cycles, not errors, and never fire it.
	OnError func(err error)

	streamActive bool
}

// NewMonitor creates a monitor over the given session. A nil config
// uses DefaultConfig.
func NewMonitor(reader *matrics.Reader, config *Config) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		config = config.Clone()
	}
	config.normalize()
	return &Monitor{
		reader: reader,
		config: config,
		strat:  newStrategyState(config),
		state:  newFieldState(),
	}, nil
}

// Reader returns the underlying session
func (m *Monitor) Reader() *matrics.Reader {
	return m.reader
}

// PresentTags returns the tags currently considered in the field,
// sorted by identity. Only safe from the goroutine running the
// monitor.
func (m *Monitor) PresentTags() []*matrics.Tag {
	return m.state.tags()
}

// Strategy returns the acquisition mode currently in effect, which
// for StrategyAuto may have fallen back from streaming to scanning.
func (m *Monitor) Strategy() ReadStrategy {
	return m.strat.currentStrategy()
}

// Run polls until ctx is canceled. Any stream the monitor started is
// stopped on the way out; the reader session itself stays open for
// the caller.
func (m *Monitor) Run(ctx context.Context) error {
	if m.config.Strategy == StrategyManual {
		return ErrManualStrategy
	}
	defer m.stopStream()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.cycle(ctx)

		// Streaming paces itself on the blocking packet read; only
		// scan cycles need the inter-poll delay.
		if m.strat.currentStrategy() == StrategyStream {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.PollInterval):
		}
	}
}

// Scan performs one manual acquisition and presence sweep. It is the
// cycle driver for StrategyManual but may be called under any
// strategy between Run loops.
func (m *Monitor) Scan(ctx context.Context) error {
	if err := m.scanOnce(ctx); err != nil {
		return err
	}
	m.sweep()
	return nil
}

// Close stops any stream the monitor started. The reader session is
// the caller's to close.
func (m *Monitor) Close() error {
	return m.stopStream()
}

// cycle runs one acquisition under the active strategy, then the
// presence sweep.
func (m *Monitor) cycle(ctx context.Context) {
	switch m.strat.currentStrategy() {
	case StrategyStream:
		m.streamCycle(ctx)
	default:
		m.scanCycle(ctx)
	}
	m.sweep()
}

// streamCycle drains one packet from the constant-read stream,
// starting the stream first if needed. Consecutive failures trip
// StrategyAuto over to scanning.
func (m *Monitor) streamCycle(ctx context.Context) {
	if !m.streamActive {
		err := m.reader.StartConstantReadContext(ctx, m.config.Stream, m.config.CallOptions...)
		if err != nil {
			m.reportError(err)
			m.recordStreamFailure()
			return
		}
		m.streamActive = true
	}

	fr, err := m.reader.ConstantReadContext(ctx, m.config.CallOptions...)
	switch {
	case err != nil:
		// A timeout just means nothing passed the antenna this
		// interval.
		if matrics.GetErrorType(err) == matrics.ErrorTypeTimeout {
			m.strat.recordSuccess()
			return
		}
		m.reportError(err)
		m.recordStreamFailure()
	case fr.Err != nil:
		m.reportError(fr.Err)
		m.recordStreamFailure()
	default:
		m.strat.recordSuccess()
		m.observe(fr.Tags)
	}
}

// recordStreamFailure counts a stream failure and, when the fallback
// trips, tears the stream down so scan cycles own the transport.
func (m *Monitor) recordStreamFailure() {
	m.strat.recordFailure()
	if m.strat.currentStrategy() != StrategyStream {
		m.stopStreamReported()
	}
}

// scanCycle performs one full-field read
func (m *Monitor) scanCycle(ctx context.Context) {
	if err := m.scanOnce(ctx); err != nil {
		m.reportError(err)
	}
}

func (m *Monitor) scanOnce(ctx context.Context) error {
	var fr *matrics.FieldRead
	var err error
	if m.config.EPC {
		fr, err = m.reader.EPCReadFullFieldUniqueContext(ctx, m.config.CallOptions...)
	} else {
		fr, err = m.reader.ReadFullFieldUniqueContext(ctx, m.config.CallOptions...)
	}
	if err != nil {
		if matrics.GetErrorType(err) == matrics.ErrorTypeTimeout {
			return nil
		}
		return err
	}
	m.observe(fr.UniqueTags)
	return nil
}

// observe records sightings and fires arrival callbacks for tags new
// to the field.
func (m *Monitor) observe(tags []*matrics.Tag) {
	now := time.Now()
	for _, tag := range tags {
		if m.state.observe(tag, now) && m.OnTagArrival != nil {
			m.OnTagArrival(tag)
		}
	}
}

// sweep expires tags past the removal timeout and fires removal
// callbacks.
func (m *Monitor) sweep() {
	for _, id := range m.state.sweep(time.Now(), m.config.RemovalTimeout) {
		if m.OnTagRemoval != nil {
			m.OnTagRemoval(id)
		}
	}
}

// stopStream ends the constant-read stream if the monitor started one
func (m *Monitor) stopStream() error {
	if !m.streamActive {
		return nil
	}
	m.streamActive = false
	if err := m.reader.StopConstantRead(m.config.CallOptions...); err != nil {
		return err
	}
	return nil
}

func (m *Monitor) stopStreamReported() {
	if err := m.stopStream(); err != nil {
		m.reportError(err)
	}
}

func (m *Monitor) reportError(err error) {
	if m.OnError != nil {
		m.OnError(err)
	}
}
