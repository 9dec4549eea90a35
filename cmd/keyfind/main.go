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

// Command keyfind scans a raw memory image for resident AES-128/AES-256
// expanded key schedules.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/SnellerInc/keyfind/internal/dump"
	"github.com/SnellerInc/keyfind/internal/imageio"
	"github.com/SnellerInc/keyfind/internal/report"
	"github.com/SnellerInc/keyfind/internal/scanner"
)

const defaultThreshold = 10

const minImageLen = 240

var (
	dashv    bool
	dashq    bool
	dasht    int
	dashh    bool
	dashdump string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose output -- print the extended keys and the constraints on the rows of the key schedule")
	flag.BoolVar(&dashq, "q", false, "don't display a progress bar")
	flag.IntVar(&dasht, "t", defaultThreshold, "maximum number of bit errors allowed in a candidate key schedule")
	flag.BoolVar(&dashh, "h", false, "display this help message")
	flag.StringVar(&dashdump, "dump-candidates", "", "also write every match to this zstd-compressed newline-delimited JSON file")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: keyfind [OPTION]... MEMORY-IMAGE\n"+
		"Locates scheduled 128-bit and 256-bit AES keys in MEMORY-IMAGE.\n\n")
	flag.PrintDefaults()
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if dashh {
		usage()
		os.Exit(1)
	}
	if dasht < 0 {
		fmt.Fprintln(os.Stderr, "invalid threshold")
		usage()
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	img, err := imageio.Open(flag.Arg(0))
	if err != nil {
		exitf("%s", err)
	}
	defer img.Close()

	data := img.Bytes()
	if len(data) < minImageLen {
		exitf("memory image too small")
	}

	var sink *dump.Sink
	if dashdump != "" {
		sink, err = dump.Open(dashdump)
		if err != nil {
			exitf("%s", err)
		}
		defer sink.Close()
	}

	rep := report.Reporter{Out: os.Stdout, Verbose: dashv}

	opts := scanner.Options{
		Threshold: dasht,
		Verbose:   dashv,
		Progress:  !dashq,
	}

	reportMatch := func(m scanner.Match) {
		rep.Report(m)
		if sink != nil {
			if err := sink.Write(m); err != nil {
				exitf("writing candidate dump: %s", err)
			}
		}
	}

	tick := func(pct int) {
		if pct >= 100 {
			fmt.Fprintf(os.Stderr, "Keyfind progress: %d%%\n", pct)
		} else {
			fmt.Fprintf(os.Stderr, "Keyfind progress: %d%%\r", pct)
		}
	}

	if err := scanner.Scan(context.Background(), data, opts, reportMatch, tick); err != nil {
		exitf("%s", err)
	}
}
