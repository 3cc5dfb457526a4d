/*
Package hexdump provides raw byte level inspection of ROM images: hex
views, pattern search, buffer comparison and bounds checked writes.
*/
package hexdump

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

const (
	// BytesPerLine is the width of a hex view line.
	BytesPerLine = 16

	// MaxDiffs caps the number of records Compare returns.
	MaxDiffs = 1000

	// EOF marks a byte position beyond the end of the shorter buffer in
	// a Diff. It never compares equal to an in-range byte.
	EOF = -1
)

// ErrOutOfRange is returned by Write when the region extends past the end
// of the buffer.
var ErrOutOfRange = errors.New("hexdump: write would exceed buffer size")

// Diff records one offset where two buffers disagree. Old and New hold
// byte values 0-255, or EOF where a buffer has ended.
type Diff struct {
	Offset int
	Old    int
	New    int
}

// View formats a slice of data as classic hex dump lines:
// offset | space separated hex bytes | ASCII. Out of range requests are
// clamped to the buffer.
func View(data []byte, offset, length int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(data) {
		offset = len(data)
	}
	end := offset + length
	if length < 0 || end > len(data) {
		end = len(data)
	}

	var lines []string
	for i := offset; i < end; i += BytesPerLine {
		chunk := data[i:min(i+BytesPerLine, end)]

		var hexPart strings.Builder
		var asciiPart strings.Builder
		for j, b := range chunk {
			if j > 0 {
				hexPart.WriteByte(' ')
			}
			fmt.Fprintf(&hexPart, "%02X", b)
			if b >= 32 && b <= 126 {
				asciiPart.WriteByte(b)
			} else {
				asciiPart.WriteByte('.')
			}
		}

		lines = append(lines, fmt.Sprintf("%08X | %-*s | %s", i, BytesPerLine*3-1, hexPart.String(), asciiPart.String()))
	}
	return lines
}

// Search returns the starting offsets, in ascending order, of every
// occurrence of pattern in data. Matches may overlap.
func Search(data, pattern []byte) []int {
	var offsets []int
	if len(pattern) == 0 {
		return offsets
	}
	for i := 0; i+len(pattern) <= len(data); {
		j := bytes.Index(data[i:], pattern)
		if j == -1 {
			break
		}
		offsets = append(offsets, i+j)
		i += j + 1
	}
	return offsets
}

// Compare walks both buffers to the length of the longer one and records
// every offset where they disagree, stopping after MaxDiffs records.
// Positions past the end of the shorter buffer compare as EOF.
func Compare(a, b []byte) []Diff {
	var diffs []Diff
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	for i := 0; i < max && len(diffs) < MaxDiffs; i++ {
		av, bv := EOF, EOF
		if i < len(a) {
			av = int(a[i])
		}
		if i < len(b) {
			bv = int(b[i])
		}
		if av != bv {
			diffs = append(diffs, Diff{Offset: i, Old: av, New: bv})
		}
	}
	return diffs
}

// Write returns a copy of data with p overwriting the bytes at offset.
func Write(data []byte, offset int, p []byte) ([]byte, error) {
	if offset < 0 || offset+len(p) > len(data) {
		return nil, ErrOutOfRange
	}
	out := make([]byte, len(data))
	copy(out, data)
	copy(out[offset:], p)
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
