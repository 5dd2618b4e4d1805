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
	"context"
	"fmt"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/spf13/cobra"
)

var (
	flagReadEPC    bool
	flagReadUnique bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Scan the field once and list the visible tags",
	Args:  cobra.NoArgs,
	RunE:  runRead,
}

func init() {
	readCmd.Flags().BoolVar(&flagReadEPC, "epc", false, "Use the EPC command family")
	readCmd.Flags().BoolVarP(&flagReadUnique, "unique", "u", false,
		"Deduplicate tags reported more than once in the scan")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, _ []string) error {
	reader, closer, err := openReader()
	if err != nil {
		return err
	}
	defer closer()

	fr, err := fieldRead(cmd.Context(), reader)
	if err != nil {
		return err
	}

	tags := fr.Tags
	if flagReadUnique {
		tags = fr.UniqueTags
		fmt.Printf("%d tags (%d unique) on %s\n", fr.NumTags, fr.UniqueCount, fr.Antenna)
	} else {
		fmt.Printf("%d tags on %s\n", fr.NumTags, fr.Antenna)
	}
	for _, tag := range tags {
		fmt.Printf("  %s  %s\n", tag.ID, tag.Class)
	}
	return nil
}

func fieldRead(ctx context.Context, reader *matrics.Reader) (*matrics.FieldRead, error) {
	switch {
	case flagReadEPC && flagReadUnique:
		return reader.EPCReadFullFieldUniqueContext(ctx)
	case flagReadEPC:
		return reader.EPCReadFullFieldContext(ctx)
	case flagReadUnique:
		return reader.ReadFullFieldUniqueContext(ctx)
	default:
		return reader.ReadFullFieldContext(ctx)
	}
}
