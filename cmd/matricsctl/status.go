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

	matrics "github.com/ZaparooProject/go-matrics"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reader identity and antenna health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	reader, closer, err := openReader()
	if err != nil {
		return err
	}
	defer closer()

	status, err := reader.GetReaderStatusContext(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Serial number:   %s\n", status.SerialNumber)
	fmt.Printf("Firmware:        %s\n", status.Version)
	fmt.Printf("Reset flag:      %#02x\n", status.ResetFlag)
	fmt.Printf("Combine mask:    %#02x\n", status.CombineBits)
	fmt.Printf("Antenna status:  %s\n", formatAntennaStatus(status.AntennaStatus))
	fmt.Printf("Last error:      %#02x\n", status.LastError)
	return nil
}

// formatAntennaStatus renders the antenna status bits as a port list
func formatAntennaStatus(bits uint8) string {
	out := ""
	for port := 0; port < matrics.NumAntennas; port++ {
		if bits&(1<<port) == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d", port+1)
	}
	if out == "" {
		return fmt.Sprintf("%#02x (none)", bits)
	}
	return fmt.Sprintf("%#02x (ports %s)", bits, out)
}
