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
	"encoding/hex"
	"slices"
	"strings"
)

// Tag is a single tag reading. ID is the canonical lowercase hex
// identity; Raw holds the identity bytes in link order, which is the
// reverse of the canonical rendering. Tags are immutable once built.
type Tag struct {
	ID    string
	Raw   []byte
	Class TagClass
}

// NewTagFromText builds a Tag from a hex identity string. Non-hex
// characters (separators, whitespace) are stripped rather than
// rejected; the remaining digits must pair up into whole bytes.
func NewTagFromText(id string) (*Tag, error) {
	var sb strings.Builder
	sb.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'F':
			sb.WriteRune(r + ('a' - 'A'))
		}
	}
	canonical := sb.String()
	if len(canonical)%2 != 0 {
		return nil, newUsageError("NewTagFromText", ErrInvalidTagID)
	}
	raw, err := hex.DecodeString(canonical)
	if err != nil {
		return nil, newUsageError("NewTagFromText", ErrInvalidTagID)
	}
	reverseBytes(raw)
	return &Tag{ID: canonical, Raw: raw}, nil
}

// NewTagFromBytes builds a Tag from link-order identity bytes as they
// appear in a field-read record.
func NewTagFromBytes(raw []byte, class TagClass) *Tag {
	ordered := make([]byte, len(raw))
	copy(ordered, raw)
	reversed := make([]byte, len(raw))
	copy(reversed, raw)
	reverseBytes(reversed)
	return &Tag{
		ID:    hex.EncodeToString(reversed),
		Raw:   ordered,
		Class: class,
	}
}

// Compare orders tags by canonical identity text. The comparison is
// lexicographic, not numeric.
func (t *Tag) Compare(other *Tag) int {
	return strings.Compare(t.ID, other.ID)
}

// String returns the canonical hex identity.
func (t *Tag) String() string {
	return t.ID
}

// CompareTags is Compare in the shape slices.SortFunc wants.
func CompareTags(a, b *Tag) int {
	return a.Compare(b)
}

// DedupeTags returns tags sorted ascending by identity with duplicates
// collapsed. The input slice is not modified.
func DedupeTags(tags []*Tag) []*Tag {
	if len(tags) == 0 {
		return []*Tag{}
	}
	sorted := slices.Clone(tags)
	slices.SortFunc(sorted, CompareTags)
	out := sorted[:1]
	for _, tag := range sorted[1:] {
		if tag.Compare(out[len(out)-1]) != 0 {
			out = append(out, tag)
		}
	}
	return out
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
