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

// Package aesref is a small, independent reference implementation of the
// standard (FIPS-197) AES-128 and AES-256 key schedules, adapted from
// internal/aes's ExpandedKey128/auxExpandFromKey128 shape and extended to
// AES-256. It exists to produce known-good expanded schedules for tests in
// internal/keyschedule and internal/scanner: it never renormalizes into the
// detector's little-endian word convention itself, it only produces the
// canonical round-key byte sequence that a real implementation would leave
// resident in memory. Callers load that byte sequence with the same
// little-endian word accessor the scanner uses (keyschedule.Window).
package aesref

import "math/bits"

// sbox is the forward AES S-box.
var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

// word is a schedule word packed big-endian (byte 0 in the most significant
// position), matching the textbook array-of-bytes convention: byte 0 is
// "first" both in the conceptual word and in memory.
type word uint32

func wordFromBytes(b0, b1, b2, b3 byte) word {
	return word(b0)<<24 | word(b1)<<16 | word(b2)<<8 | word(b3)
}

func (w word) bytes() [4]byte {
	return [4]byte{byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w)}
}

func subWord(w word) word {
	b := w.bytes()
	return wordFromBytes(sbox[b[0]], sbox[b[1]], sbox[b[2]], sbox[b[3]])
}

func rotWord(w word) word {
	return word(bits.RotateLeft32(uint32(w), 8))
}

var rcon [15]word

func init() {
	c := byte(1)
	for i := range rcon {
		rcon[i] = word(c) << 24
		if c&0x80 != 0 {
			c = (c << 1) ^ 0x1b
		} else {
			c = c << 1
		}
	}
}

func expand(key []byte, nk, nr int) []byte {
	words := make([]word, 4*(nr+1))
	for i := 0; i < nk; i++ {
		words[i] = wordFromBytes(key[4*i], key[4*i+1], key[4*i+2], key[4*i+3])
	}
	for i := nk; i < len(words); i++ {
		t := words[i-1]
		switch {
		case i%nk == 0:
			t = subWord(rotWord(t)) ^ rcon[i/nk-1]
		case nk > 6 && i%nk == 4:
			t = subWord(t)
		}
		words[i] = words[i-nk] ^ t
	}
	out := make([]byte, 4*len(words))
	for i, w := range words {
		b := w.bytes()
		copy(out[4*i:], b[:])
	}
	return out
}

// Expand128 returns the 176-byte AES-128 expanded key schedule for key (which
// must be 16 bytes), in standard byte order: 11 round keys of 16 bytes each.
func Expand128(key []byte) []byte {
	return expand(key, 4, 10)
}

// Expand256 returns the 240-byte AES-256 expanded key schedule for key (which
// must be 32 bytes), in standard byte order: 15 round keys of 16 bytes each.
func Expand256(key []byte) []byte {
	return expand(key, 8, 14)
}
