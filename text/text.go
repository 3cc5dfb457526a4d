/*
Package text finds and patches printable ASCII strings in ROM images.

Mega Drive games rarely index their text, so extraction is a scan for
maximal runs of printable characters inside caller supplied ranges.
Replacement is strictly in-place: the new string may not be longer than
the old one and the remainder is NUL padded, keeping every other offset
in the ROM untouched.
*/
package text

import "errors"

var (
	// ErrTooLong is returned when the replacement exceeds the original.
	ErrTooLong = errors.New("text: replacement longer than original")

	// ErrMismatch is returned when the expected text is not at the given
	// offset, usually a sign of stale offsets from an earlier extraction.
	ErrMismatch = errors.New("text: original text not found at offset")
)

// Region is a half-open byte range [Start, End) to scan.
type Region struct {
	Start, End int
}

// DefaultRegions are the areas that commonly hold text in Mega Drive
// ROMs.
var DefaultRegions = []Region{
	{0x10000, 0x20000},
	{0x80000, 0x100000},
	{0x120000, 0x180000},
}

// String is one extracted run of text.
type String struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

func printable(b byte) bool {
	return b >= 32 && b <= 126
}

// Find scans the given regions for maximal printable ASCII runs of at
// least minLength characters. Regions beyond the end of data are clamped;
// results are in increasing offset order within each region.
func Find(data []byte, minLength int, regions []Region) []String {
	if len(regions) == 0 {
		regions = DefaultRegions
	}
	if minLength < 1 {
		minLength = 1
	}

	var out []String
	for _, r := range regions {
		start := r.Start
		if start < 0 {
			start = 0
		}
		if start >= len(data) {
			continue
		}
		end := r.End
		if end > len(data) {
			end = len(data)
		}

		runStart := -1
		flush := func(i int) {
			if runStart != -1 && i-runStart >= minLength {
				out = append(out, String{
					Text:   string(data[runStart:i]),
					Offset: runStart,
					Length: i - runStart,
				})
			}
			runStart = -1
		}

		for i := start; i < end; i++ {
			if printable(data[i]) {
				if runStart == -1 {
					runStart = i
				}
			} else {
				flush(i)
			}
		}
		flush(end)
	}
	return out
}

// Replace overwrites oldText at offset with newText, NUL padding up to the
// original length, and returns a modified copy of data. The bytes at
// offset must match oldText exactly.
func Replace(data []byte, offset int, oldText, newText string) ([]byte, error) {
	if len(newText) > len(oldText) {
		return nil, ErrTooLong
	}
	if offset < 0 || offset+len(oldText) > len(data) {
		return nil, ErrMismatch
	}
	if string(data[offset:offset+len(oldText)]) != oldText {
		return nil, ErrMismatch
	}

	out := make([]byte, len(data))
	copy(out, data)
	copy(out[offset:], newText)
	for i := offset + len(newText); i < offset+len(oldText); i++ {
		out[i] = 0
	}
	return out, nil
}
