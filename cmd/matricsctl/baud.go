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
	"strconv"

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/ZaparooProject/go-matrics/transport/serial"
	"github.com/spf13/cobra"
)

var baudCmd = &cobra.Command{
	Use:   "baud <rate>",
	Short: "Change the reader's link baud rate",
	Long: fmt.Sprintf(`Change the reader's link baud rate.

Supported rates: %v.

On a direct serial connection the local port is reconfigured to the
new rate once the reader acknowledges, so the session stays usable.`,
		matrics.SupportedBaudRates()),
	Args: cobra.ExactArgs(1),
	RunE: runBaud,
}

func init() {
	rootCmd.AddCommand(baudCmd)
}

func runBaud(cmd *cobra.Command, args []string) error {
	rate, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad rate %q: %w", args[0], err)
	}

	reader, closer, err := openReader()
	if err != nil {
		return err
	}
	defer closer()

	if err := reader.SetBaudRateContext(cmd.Context(), rate); err != nil {
		return err
	}

	// Follow the reader to the new rate when the transport can.
	if st, ok := reader.Transport().(*serial.Transport); ok {
		if err := st.SetBaudRate(rate); err != nil {
			return fmt.Errorf("reader switched but local port did not: %w", err)
		}
	}
	fmt.Printf("baud rate set to %d\n", rate)
	return nil
}
