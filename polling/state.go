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
	"slices"
	"time"

	matrics "github.com/ZaparooProject/go-matrics"
)

// tagPresence tracks one tag currently in the field
type tagPresence struct {
	firstSeen time.Time
	lastSeen  time.Time
	tag       *matrics.Tag
}

// fieldState tracks which tags are present, keyed by canonical
// identity. A tag that goes unseen for longer than the removal
// timeout is swept out; the grace window absorbs the read-to-read
// flicker UHF antennas produce on marginal tags.
type fieldState struct {
	present map[string]*tagPresence
}

func newFieldState() *fieldState {
	return &fieldState{present: make(map[string]*tagPresence)}
}

// observe records a sighting and reports whether the tag is new to
// the field.
func (s *fieldState) observe(tag *matrics.Tag, now time.Time) bool {
	if p, ok := s.present[tag.ID]; ok {
		p.lastSeen = now
		return false
	}
	s.present[tag.ID] = &tagPresence{
		firstSeen: now,
		lastSeen:  now,
		tag:       tag,
	}
	return true
}

// sweep removes tags unseen for longer than timeout and returns their
// identities in ascending order.
func (s *fieldState) sweep(now time.Time, timeout time.Duration) []string {
	var removed []string
	for id, p := range s.present {
		if now.Sub(p.lastSeen) > timeout {
			removed = append(removed, id)
			delete(s.present, id)
		}
	}
	slices.Sort(removed)
	return removed
}

// reset empties the field and returns every identity that was
// present, ascending. Used when the reader link is deemed lost.
func (s *fieldState) reset() []string {
	removed := make([]string, 0, len(s.present))
	for id := range s.present {
		removed = append(removed, id)
	}
	clear(s.present)
	slices.Sort(removed)
	return removed
}

// tags returns the present tags sorted by identity
func (s *fieldState) tags() []*matrics.Tag {
	out := make([]*matrics.Tag, 0, len(s.present))
	for _, p := range s.present {
		out = append(out, p.tag)
	}
	slices.SortFunc(out, matrics.CompareTags)
	return out
}

// seen returns when the identified tag was last read, and whether it
// is present at all.
func (s *fieldState) seen(id string) (time.Time, bool) {
	p, ok := s.present[id]
	if !ok {
		return time.Time{}, false
	}
	return p.lastSeen, true
}
