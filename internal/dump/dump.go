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

// Package dump writes scanner matches as newline-delimited JSON into a
// zstd-compressed sink, for an analyst batch-triaging matches across many
// images after the fact. It performs no analysis of its own: it stores
// exactly what the scanner already reported.
package dump

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/SnellerInc/keyfind/internal/scanner"
)

// record is the on-disk shape of one dumped match.
type record struct {
	RunID  string   `json:"run_id"`
	Offset int      `json:"offset"`
	Bits   int      `json:"bits"`
	Tweak  uint8    `json:"tweak"`
	Words  []uint32 `json:"words"`
}

// Sink streams matches to a zstd-compressed NDJSON file.
type Sink struct {
	f       *os.File
	enc     *zstd.Encoder
	runID   string
	encoder *json.Encoder
}

// Open creates (truncating) path and returns a Sink bound to a fresh run ID.
func Open(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating candidate dump: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("initializing zstd writer: %w", err)
	}
	return &Sink{
		f:       f,
		enc:     zw,
		runID:   uuid.New().String(),
		encoder: json.NewEncoder(zw),
	}, nil
}

// RunID is the UUID tagging every record this Sink writes, so NDJSON files
// from separate scans of the same or different images can be correlated.
func (s *Sink) RunID() string {
	return s.runID
}

// Write appends one match record.
func (s *Sink) Write(m scanner.Match) error {
	return s.encoder.Encode(record{
		RunID:  s.runID,
		Offset: m.Offset,
		Bits:   m.Bits,
		Tweak:  uint8(m.Tweak),
		Words:  m.Words,
	})
}

// Close flushes and closes the underlying zstd stream and file.
func (s *Sink) Close() error {
	if err := s.enc.Close(); err != nil {
		s.f.Close()
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return s.f.Close()
}
