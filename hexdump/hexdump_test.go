package hexdump

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	data := []byte("SEGA GENESIS    \x00\x01\x02")

	lines := View(data, 0, len(data))
	require.Len(t, lines, 2)
	assert.Equal(t, "00000000 | 53 45 47 41 20 47 45 4E 45 53 49 53 20 20 20 20 | SEGA GENESIS    ", lines[0])

	// Short lines pad the hex column to a fixed width.
	assert.Equal(t, fmt.Sprintf("00000010 | %-47s | ...", "00 01 02"), lines[1])
}

func TestViewOffset(t *testing.T) {
	data := make([]byte, 64)
	lines := View(data, 16, 16)
	require.Len(t, lines, 1)
	assert.Equal(t, "00000010", lines[0][:8])
}

func TestViewClamped(t *testing.T) {
	data := make([]byte, 8)
	lines := View(data, 0, 1024)
	assert.Len(t, lines, 1)
	assert.Empty(t, View(data, 100, 16))
}

func TestSearch(t *testing.T) {
	data := []byte{0x00, 0xaa, 0xbb, 0xaa, 0xbb, 0xaa}

	assert.Equal(t, []int{1, 3}, Search(data, []byte{0xaa, 0xbb}))
	assert.Empty(t, Search(data, []byte{0xcc}))
	assert.Empty(t, Search(data, nil))
}

func TestSearchOverlapping(t *testing.T) {
	data := []byte("AAAA")
	assert.Equal(t, []int{0, 1, 2}, Search(data, []byte("AA")))
}

func TestCompare(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 9, 3}

	diffs := Compare(a, b)
	require.Len(t, diffs, 2)
	assert.Equal(t, Diff{Offset: 1, Old: 2, New: 9}, diffs[0])
	assert.Equal(t, Diff{Offset: 3, Old: 4, New: EOF}, diffs[1])
}

func TestCompareSymmetry(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5}
	b := []byte{1, 0, 3, 0}

	ab := Compare(a, b)
	ba := Compare(b, a)
	require.Equal(t, len(ab), len(ba))
	for i := range ab {
		assert.Equal(t, ab[i].Offset, ba[i].Offset)
		assert.Equal(t, ab[i].Old, ba[i].New)
		assert.Equal(t, ab[i].New, ba[i].Old)
	}
}

func TestCompareCap(t *testing.T) {
	a := make([]byte, 2000)
	b := make([]byte, 2000)
	for i := range b {
		b[i] = 1
	}
	assert.Len(t, Compare(a, b), MaxDiffs)
}

func TestCompareEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	assert.Empty(t, Compare(a, a))
}

func TestWrite(t *testing.T) {
	data := []byte{1, 2, 3, 4}

	out, err := Write(data, 1, []byte{9, 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 9, 9, 4}, out)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestWriteOutOfRange(t *testing.T) {
	_, err := Write([]byte{1, 2, 3}, 2, []byte{9, 9})
	assert.Equal(t, ErrOutOfRange, err)

	_, err = Write([]byte{1, 2, 3}, -1, []byte{9})
	assert.Equal(t, ErrOutOfRange, err)
}
