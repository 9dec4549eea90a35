// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package report formats scanner matches for standard output, matching the
// legacy aeskeyfind tool's byte-for-byte output contract.
package report

import (
	"fmt"
	"io"

	"github.com/SnellerInc/keyfind/internal/keyschedule"
	"github.com/SnellerInc/keyfind/internal/scanner"
)

// Reporter writes match records to Out. Verbose controls whether the full
// extended schedule and row constraints are printed alongside the key.
type Reporter struct {
	Out     io.Writer
	Verbose bool
}

// printWord is the shared word-printing primitive: an 8-hex-digit word
// followed by a space. Its exact format is an external contract with the
// legacy tool and must not change independently of a deliberate format
// migration.
func printWord(w io.Writer, word uint32) {
	fmt.Fprintf(w, "%08x ", word)
}

// Report prints one match in the format spec'd for the reporter's verbosity
// level.
func (r *Reporter) Report(m scanner.Match) {
	if r.Verbose {
		r.reportVerbose(m)
		return
	}
	numWords := m.Bits / 32
	for i := 0; i < numWords; i++ {
		printWord(r.Out, m.Words[i])
	}
	fmt.Fprintln(r.Out)
}

func (r *Reporter) reportVerbose(m scanner.Match) {
	fmt.Fprintf(r.Out, "FOUND POSSIBLE %d-BIT KEY AT BYTE %x \n\n", m.Bits, m.Offset)

	fmt.Fprint(r.Out, "KEY: ")
	numWords := m.Bits / 32
	for i := 0; i < numWords; i++ {
		printWord(r.Out, m.Words[i])
	}
	fmt.Fprintln(r.Out)

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "EXTENDED KEY: ")
	rows := len(m.Words) / 4
	for row := 0; row < rows; row++ {
		for col := 0; col < 4; col++ {
			printWord(r.Out, m.Words[4*row+col])
		}
		fmt.Fprintln(r.Out)
	}

	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "CONSTRAINTS ON ROWS:")
	sched := words(m.Words)
	// The residual formulas are only defined over the rows the evaluators
	// actually probe: 1..7 for AES-256 (8-word rows), 1..10 for AES-128
	// (4-word rows) -- not every row index the extended key happens to have.
	maxRow, maxColumn := 11, 4
	if m.Bits == 256 {
		maxRow, maxColumn = 8, 8
	}
	for row := 1; row < maxRow; row++ {
		for column := 0; column < maxColumn; column++ {
			if m.Bits == 256 && row == 7 && column >= 4 {
				break
			}
			var residual uint32
			if m.Bits == 256 {
				residual = keyschedule.Residual256(sched, row, column)
			} else {
				residual = keyschedule.Residual128(sched, row, column)
			}
			printWord(r.Out, residual)
		}
		fmt.Fprintln(r.Out)
	}
	fmt.Fprintln(r.Out)
}

// words adapts a []uint32 match payload to keyschedule.Words so the
// reporter can reuse the exact same residual formulas the evaluators use.
type words []uint32

func (w words) Word(i int) uint32 { return w[i] }
