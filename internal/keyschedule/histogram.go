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

// windowSize is the horizon the entropy pre-filter consults: the byte width
// of an AES-128 expanded schedule.
const windowSize = 176

// maxRepeats is the per-byte occurrence count above which a window is
// rejected as too low-entropy to be key material.
const maxRepeats = 8

// Histogram is a sliding byte-frequency counter over a windowSize-byte
// horizon. It is bound to a single scan: callers that want independent,
// concurrent scans must use independent Histograms rather than sharing one.
type Histogram struct {
	counts      [256]int
	initialized bool
}

// Init seeds the histogram from the first windowSize bytes of the image.
// window must have length >= windowSize.
func (h *Histogram) Init(window []byte) {
	for i := 0; i < windowSize; i++ {
		h.counts[window[i]]++
	}
	h.initialized = true
}

// Reject reports whether the window the histogram currently describes looks
// too repetitive to plausibly be AES round-key material: any byte value
// occurring more than maxRepeats times. Genuine key schedules look
// essentially random and almost never trip this; it is a zero-cost
// optimization, not a source of false negatives beyond the threshold the
// distance evaluators already tolerate.
func (h *Histogram) Reject() bool {
	for _, c := range h.counts {
		if c > maxRepeats {
			return true
		}
	}
	return false
}

// Slide advances the histogram by one byte: outgoing leaves the window,
// incoming enters it. Call this after Reject, once per scan step, so the
// histogram always describes the window the next call to Reject will judge.
func (h *Histogram) Slide(outgoing, incoming byte) {
	h.counts[outgoing]--
	h.counts[incoming]++
}

// Initialized reports whether Init has been called.
func (h *Histogram) Initialized() bool {
	return h.initialized
}

// WindowSize is the byte horizon the histogram tracks.
func WindowSize() int {
	return windowSize
}
