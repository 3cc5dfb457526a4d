/*
Package palette implements the Mega Drive CRAM color format.

Each color is a packed big-endian 16-bit word laid out as 0000BBB0GGG0RRR0;
a full palette is sixteen consecutive words, 32 bytes. The console only has
three bits per channel so conversion to and from 8-bit RGB is lossy in both
directions.
*/
package palette

import "errors"

const (
	// Size is the number of colors in a palette.
	Size = 16

	// Bytes is the encoded size of a palette.
	Bytes = Size * 2

	// validThreshold is the number of words that must look like CRAM
	// values before a 32 byte region is considered a palette.
	validThreshold = 12

	// maxWord is the largest value a 9-bit CRAM word can hold.
	maxWord = 0x1ff
)

// KnownOffsets are ROM locations that commonly hold palette data.
var KnownOffsets = []int{0x20000, 0x30000, 0x40000, 0x50000, 0x60000, 0x70000}

// DefaultMaxScan bounds the number of palettes returned by Extract when the
// caller does not supply a limit.
const DefaultMaxScan = 100

var (
	// ErrPaletteSize is returned when decoding anything other than 32 bytes.
	ErrPaletteSize = errors.New("palette: data must be 32 bytes")

	// ErrIndexNotFound is returned by Apply when the palette index exceeds
	// the number of valid regions at the known offsets.
	ErrIndexNotFound = errors.New("palette: palette index not found")
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Palette is an ordered set of sixteen colors. Being a fixed array it is
// comparable, which Extract relies on for deduplication.
type Palette [Size]Color

// Found is a palette together with the ROM offset it was decoded from.
type Found struct {
	Offset  int
	Palette Palette
}

// expand scales a 3-bit channel to 8 bits. Not the exact inverse of
// compress; games depend on this pair as-is.
func expand(c uint16) uint8 {
	return uint8(c * 255 / 7)
}

func compress(c uint8) uint16 {
	return uint16(c) * 7 / 255
}

// Decode unpacks 32 bytes of CRAM data into a Palette.
func Decode(b []byte) (Palette, error) {
	var p Palette
	if len(b) != Bytes {
		return p, ErrPaletteSize
	}
	for i := 0; i < Size; i++ {
		word := uint16(b[i*2])<<8 | uint16(b[i*2+1])
		p[i] = Color{
			R: expand(word >> 1 & 0x7),
			G: expand(word >> 5 & 0x7),
			B: expand(word >> 9 & 0x7),
		}
	}
	return p, nil
}

// Encode packs a Palette back into 32 bytes of CRAM data.
func Encode(p Palette) []byte {
	b := make([]byte, Bytes)
	for i, c := range p {
		word := compress(c.B)<<9 | compress(c.G)<<5 | compress(c.R)<<1
		b[i*2] = byte(word >> 8)
		b[i*2+1] = byte(word)
	}
	return b
}

// Valid reports whether b looks like a palette: at least twelve of the
// sixteen words must fit in nine bits. Purely heuristic, false positives
// on arbitrary data are expected.
func Valid(b []byte) bool {
	if len(b) != Bytes {
		return false
	}
	valid := 0
	for i := 0; i < Bytes; i += 2 {
		if uint16(b[i])<<8|uint16(b[i+1]) <= maxWord {
			valid++
		}
	}
	return valid >= validThreshold
}

// Extract finds palettes in a ROM image. The known offsets are always
// probed in full; a non-overlapping 32 byte scan of the whole buffer then
// runs until the combined result count reaches maxScan (DefaultMaxScan if
// maxScan is zero or negative). Results are deduplicated by value across
// both passes.
func Extract(data []byte, maxScan int) []Found {
	if maxScan <= 0 {
		maxScan = DefaultMaxScan
	}

	var found []Found

	seen := func(p Palette) bool {
		for _, f := range found {
			if f.Palette == p {
				return true
			}
		}
		return false
	}

	for _, offset := range KnownOffsets {
		if offset+Bytes > len(data) {
			continue
		}
		region := data[offset : offset+Bytes]
		if !Valid(region) {
			continue
		}
		p, _ := Decode(region)
		if !seen(p) {
			found = append(found, Found{Offset: offset, Palette: p})
		}
	}

	for i := 0; i+Bytes <= len(data); i += Bytes {
		if len(found) >= maxScan {
			break
		}
		region := data[i : i+Bytes]
		if !Valid(region) {
			continue
		}
		p, _ := Decode(region)
		if !seen(p) {
			found = append(found, Found{Offset: i, Palette: p})
		}
	}

	return found
}

// Apply overwrites the index'th valid palette found at the known offsets
// and returns a modified copy of data. Only the known offset list is
// consulted; a full scan would make indices unstable between ROMs.
func Apply(data []byte, index int, p Palette) ([]byte, error) {
	hits := 0
	for _, offset := range KnownOffsets {
		if offset+Bytes > len(data) {
			continue
		}
		if !Valid(data[offset : offset+Bytes]) {
			continue
		}
		if hits == index {
			out := make([]byte, len(data))
			copy(out, data)
			copy(out[offset:], Encode(p))
			return out, nil
		}
		hits++
	}
	return nil, ErrIndexNotFound
}
