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

import "math/bits"

// rcon holds the AES round constants, one per schedule row 1..15 (rcon[row-1]),
// generated by iterated Xtime starting from 1.
var rcon [15]byte

func init() {
	c := byte(1)
	for i := range rcon {
		rcon[i] = c
		c = Xtime(c)
	}
}

// KeyCore is the non-linear kernel used between row 0 and row 1 of every
// round of AES key expansion: rotate the byte order of w by one position,
// apply the S-box to every byte, then XOR the Rcon value for round into the
// lowest-order byte. round is the schedule row number, 1..14.
func KeyCore(w uint32, round int) uint32 {
	rotated := bits.RotateLeft32(w, -8)
	substituted := SboxBytes(rotated)
	return substituted ^ uint32(rcon[round-1])
}
