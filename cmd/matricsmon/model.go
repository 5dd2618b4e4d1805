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

	matrics "github.com/ZaparooProject/go-matrics"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	maxEventLines = 8
	rateWindow    = 5 * time.Second
)

// snapshotMsg carries the present-tag table and counters after a scan
type snapshotMsg struct {
	taken  time.Time
	tags   []*matrics.Tag
	scans  int
	errors int
}

// eventMsg is one line for the event log
type eventMsg struct {
	text    string
	isError bool
}

// tickMsg refreshes the dwell ages once a second
type tickMsg time.Time

type eventLine struct {
	at      time.Time
	text    string
	isError bool
}

type model struct {
	source    string
	antenna   matrics.Antenna
	tags      []*matrics.Tag
	firstSeen map[string]time.Time
	events    []eventLine
	scanTimes []time.Time
	scans     int
	errors    int
	width     int
	height    int
	quitting  bool
}

func newModel(source string, antenna matrics.Antenna) model {
	return model{
		source:    source,
		antenna:   antenna,
		firstSeen: make(map[string]time.Time),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tick()

	case snapshotMsg:
		m.tags = msg.tags
		m.scans = msg.scans
		m.errors = msg.errors
		m.noteScan(msg.taken)
		m.trackFirstSeen(msg.taken)

	case eventMsg:
		m.events = append(m.events, eventLine{
			at:      time.Now(),
			text:    msg.text,
			isError: msg.isError,
		})
		if len(m.events) > maxEventLines {
			m.events = m.events[len(m.events)-maxEventLines:]
		}
	}
	return m, nil
}

// noteScan records a scan timestamp and prunes the rate window
func (m *model) noteScan(at time.Time) {
	m.scanTimes = append(m.scanTimes, at)
	cutoff := at.Add(-rateWindow)
	for len(m.scanTimes) > 0 && m.scanTimes[0].Before(cutoff) {
		m.scanTimes = m.scanTimes[1:]
	}
}

// trackFirstSeen keeps arrival times for the tags in the table and
// forgets tags that left.
func (m *model) trackFirstSeen(at time.Time) {
	present := make(map[string]bool, len(m.tags))
	for _, tag := range m.tags {
		present[tag.ID] = true
		if _, ok := m.firstSeen[tag.ID]; !ok {
			m.firstSeen[tag.ID] = at
		}
	}
	for id := range m.firstSeen {
		if !present[id] {
			delete(m.firstSeen, id)
		}
	}
}

func (m *model) readsPerSecond() float64 {
	if len(m.scanTimes) < 2 {
		return 0
	}
	span := m.scanTimes[len(m.scanTimes)-1].Sub(m.scanTimes[0])
	if span <= 0 {
		return 0
	}
	return float64(len(m.scanTimes)-1) / span.Seconds()
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	counterLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("12")).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(
		fmt.Sprintf("matricsmon — %s, %s", m.source, m.antenna)))
	b.WriteString("\n\n")

	b.WriteString(counterLabelStyle.Render("present: "))
	b.WriteString(fmt.Sprintf("%-4d", len(m.tags)))
	b.WriteString(counterLabelStyle.Render("  reads/s: "))
	b.WriteString(fmt.Sprintf("%-6.1f", m.readsPerSecond()))
	b.WriteString(counterLabelStyle.Render("  scans: "))
	b.WriteString(fmt.Sprintf("%-7d", m.scans))
	b.WriteString(counterLabelStyle.Render("  errors: "))
	if m.errors > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d", m.errors)))
	} else {
		b.WriteString("0")
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-24s %-12s %s",
		"TAG ID", "CLASS", "AGE")))
	b.WriteString("\n")
	if len(m.tags) == 0 {
		b.WriteString(dimStyle.Render("  (field empty)"))
		b.WriteString("\n")
	}
	now := time.Now()
	for _, tag := range m.tags {
		age := "-"
		if seen, ok := m.firstSeen[tag.ID]; ok {
			age = formatAge(now.Sub(seen))
		}
		b.WriteString(fmt.Sprintf("  %s %-12s %s\n",
			idStyle.Render(fmt.Sprintf("%-24s", tag.ID)), tag.Class, age))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("recent events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, ev := range m.events {
		line := fmt.Sprintf("  %s %s", ev.at.Format("15:04:05"), ev.text)
		if ev.isError {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// formatAge renders a dwell time compactly: 42s, 3m12s, 1h04m
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
