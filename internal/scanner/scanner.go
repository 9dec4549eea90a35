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

// Package scanner walks a memory image looking for resident AES key
// schedules, driving the keyschedule package's entropy filter, distance
// evaluators, and tweak enumerator over every candidate offset.
package scanner

import (
	"context"

	"github.com/SnellerInc/keyfind/internal/keyschedule"
	"github.com/SnellerInc/keyfind/ints"
)

// minImageLen is the smallest image Scan will accept: enough bytes for one
// AES-256 candidate window.
const minImageLen = 240

// Options tunes a scan. Threshold is the maximum tolerated sum of residual
// popcounts for a schedule to be reported; Verbose and Progress are
// advisory flags forwarded to callers that care (the reporter and the
// progress callback respectively) but do not change which offsets match.
type Options struct {
	Threshold int
	Verbose   bool
	Progress  bool
}

// Match is one reported candidate schedule.
type Match struct {
	// Offset is the byte offset into the image where the candidate begins.
	Offset int
	// Bits is 128 or 256.
	Bits int
	// Words is the (possibly tweaked) schedule, Bits/32 words for the key
	// alone plus the remaining round-key words.
	Words []uint32
	// Tweak is the storage-layout variant that produced this match. It is
	// always zero for AES-256 matches, since AES-256 is scanned untweaked.
	Tweak keyschedule.Tweak
}

// Scan walks image from offset 0 to len(image)-240, exclusive, emitting
// matches to report in ascending offset order (AES-256 before AES-128 at a
// given offset; AES-128 tweaks in ascending numeric order) and, when
// opts.Progress is set, calling tick with the integer percentage complete
// each time it changes, plus a final call with 100.
//
// Scan accepts a context so long-running scans over gigabyte-scale images
// can be cancelled cooperatively; it is checked once per offset. This is a
// library-level addition beyond the command-line tool's signal-based
// teardown and does not alter per-offset match semantics.
//
// len(image) must be at least 240; violating this is a programming error
// and Scan panics, since the length precondition belongs to the caller
// (the CLI validates it before ever reaching Scan).
func Scan(ctx context.Context, image []byte, opts Options, report func(Match), tick func(pct int)) error {
	if len(image) < minImageLen {
		panic("scanner: image shorter than 240 bytes")
	}
	last := len(image) - minImageLen

	if opts.Progress {
		tick(0)
	}

	var hist keyschedule.Histogram
	if last > 0 {
		hist.Init(image[:keyschedule.WindowSize()])
	}

	lastPct := 0
	for i := 0; i < last; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		reject := hist.Reject()
		hist.Slide(image[i], image[i+keyschedule.WindowSize()])
		if reject {
			continue
		}

		win := keyschedule.NewWindow(image[i:])

		if _, ok := keyschedule.EvalAES256(win, opts.Threshold); ok {
			report(Match{
				Offset: i,
				Bits:   256,
				Words:  collect(win, 60),
			})
		}

		for t := keyschedule.Tweak(0); int(t) < keyschedule.MaxTweaks; t++ {
			var buf keyschedule.Schedule
			t.Apply(&buf, win)
			if _, ok := keyschedule.EvalAES128(&buf, opts.Threshold); ok {
				report(Match{
					Offset: i,
					Bits:   128,
					Words:  append([]uint32(nil), buf[:]...),
					Tweak:  t,
				})
			}
		}

		if opts.Progress {
			pct := ints.Clamp(i*100/last, 0, 100)
			if pct > lastPct {
				lastPct = pct
				tick(pct)
			}
		}
	}

	if opts.Progress {
		tick(100)
	}
	return nil
}

func collect(w keyschedule.Words, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = w.Word(i)
	}
	return out
}
