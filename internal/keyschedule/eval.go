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

package keyschedule

// Residual256 computes the residual word for AES-256 row/column, the XOR of
// the schedule words AES's key expansion guarantees to cancel to zero on an
// error-free schedule. row ranges 1..7; column ranges 0..7, except that
// row==7 only defines columns 0..3 (AES-256's final half-row).
func Residual256(w Words, row, column int) uint32 {
	switch {
	case column == 0:
		return KeyCore(w.Word(8*row-1), row) ^ w.Word(8*(row-1)) ^ w.Word(8*row)
	case column == 4:
		return SboxBytes(w.Word(8*row+3)) ^ w.Word(8*(row-1)+4) ^ w.Word(8*row+4)
	default:
		return w.Word(8*row+column-1) ^ w.Word(8*(row-1)+column) ^ w.Word(8*row+column)
	}
}

// Residual128 computes the residual word for AES-128 row/column. row ranges
// 1..10; column ranges 0..3.
func Residual128(w Words, row, column int) uint32 {
	if column == 0 {
		return KeyCore(w.Word(4*row-1), row) ^ w.Word(4*(row-1)) ^ w.Word(4*row)
	}
	return w.Word(4*row+column-1) ^ w.Word(4*(row-1)+column) ^ w.Word(4*row+column)
}

// EvalAES256 measures the bit-error distance of w (interpreted as 60 words,
// 15 round keys) from a valid AES-256 schedule, short-circuiting as soon as
// the accumulated popcount exceeds threshold. The match predicate is
// non-strict (<=), preserved from the source tool despite the asymmetry with
// EvalAES128's strict predicate below.
func EvalAES256(w Words, threshold int) (count int, ok bool) {
	for row := 1; row < 8; row++ {
		for column := 0; column < 8; column++ {
			if row == 7 && column == 4 {
				break
			}
			count += Popcount(Residual256(w, row, column))
		}
		if count > threshold {
			break
		}
	}
	return count, count <= threshold
}

// EvalAES128 measures the bit-error distance of w (interpreted as 44 words,
// 11 round keys) from a valid AES-128 schedule, short-circuiting as soon as
// the accumulated popcount exceeds threshold. The match predicate is strict
// (<), an inconsistency with EvalAES256's non-strict predicate that is
// preserved verbatim from the source tool rather than "fixed" silently.
func EvalAES128(w Words, threshold int) (count int, ok bool) {
	for row := 1; row < 11; row++ {
		for column := 0; column < 4; column++ {
			count += Popcount(Residual128(w, row, column))
		}
		if count > threshold {
			break
		}
	}
	return count, count < threshold
}
