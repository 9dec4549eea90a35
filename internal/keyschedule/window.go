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

import (
	"encoding/binary"
	"math/bits"
)

// Popcount returns the Hamming weight of w.
func Popcount(w uint32) int {
	return bits.OnesCount32(w)
}

// Words is a source of 32-bit schedule words, indexed from 0. Implementations
// never bounds-check beyond what the caller guarantees (the evaluators only
// ever index within the row/column ranges spec'd for each key size).
type Words interface {
	Word(i int) uint32
}

// Window is a read-only view of a candidate memory region, interpreted as a
// sequence of 32-bit little-endian words. The underlying bytes are never
// copied or mutated.
type Window struct {
	data []byte
}

// NewWindow wraps data (which must be at least 4 bytes per word accessed) as
// a Window.
func NewWindow(data []byte) Window {
	return Window{data: data}
}

// Word performs an unaligned little-endian load of the 32-bit word starting
// at byte offset 4*i. The source image is not guaranteed to be aligned to a
// 4-byte boundary at any particular offset, so this never casts a pointer.
func (w Window) Word(i int) uint32 {
	return binary.LittleEndian.Uint32(w.data[4*i:])
}

// Schedule is a fixed-size in-memory copy of round-key words, used as the
// scratch destination for tweak transformations and as the Words source the
// AES-128 evaluator runs against.
type Schedule [44]uint32

// Word implements Words.
func (s *Schedule) Word(i int) uint32 {
	return s[i]
}
