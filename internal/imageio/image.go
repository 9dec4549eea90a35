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

package imageio

import (
	"fmt"
	"os"
)

// Image is a read-only, contiguous view of a memory-image file, either
// mapped directly or (on platforms without a mmap implementation here)
// loaded wholesale into a byte slice.
type Image struct {
	data   []byte
	mapped bool
}

// Open maps path read-only and returns an Image. The caller must call
// Close when done with it.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	if mem, ok := mmap(f, st.Size()); ok {
		return &Image{data: mem, mapped: true}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return &Image{data: data}, nil
}

// Bytes returns the image's contents. The returned slice is only valid
// until Close is called.
func (img *Image) Bytes() []byte {
	return img.data
}

// Close releases the underlying mapping, if any.
func (img *Image) Close() error {
	if !img.mapped {
		return nil
	}
	return unmap(img.data)
}
