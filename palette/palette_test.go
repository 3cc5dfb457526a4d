package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient returns the encoded palette where color i has red and green set
// to level i modulo 8 and no blue, so every word stays within nine bits and
// the region passes the plausibility test.
func gradient() []byte {
	b := make([]byte, Bytes)
	for i := 0; i < Size; i++ {
		level := uint16(i & 7)
		word := level<<5 | level<<1
		b[i*2] = byte(word >> 8)
		b[i*2+1] = byte(word)
	}
	return b
}

// mono returns a palette alternating between black and white, the only two
// channel values that survive the asymmetric floor scaling unchanged.
func mono() Palette {
	var p Palette
	for i := range p {
		if i%2 == 1 {
			p[i] = Color{255, 255, 255}
		}
	}
	return p
}

func TestDecodeGradient(t *testing.T) {
	p, err := Decode(gradient())
	require.NoError(t, err)

	for i := 0; i < Size; i++ {
		want := uint8((i & 7) * 255 / 7)
		assert.Equal(t, Color{R: want, G: want}, p[i])
	}
}

func TestDecodeWrongSize(t *testing.T) {
	_, err := Decode(make([]byte, 31))
	assert.Equal(t, ErrPaletteSize, err)

	_, err = Decode(make([]byte, 33))
	assert.Equal(t, ErrPaletteSize, err)
}

func TestRoundTrip(t *testing.T) {
	p, err := Decode(Encode(mono()))
	require.NoError(t, err)
	assert.Equal(t, mono(), p)
}

func TestScalingIsLossy(t *testing.T) {
	// 36 is floor(1*255/7) yet floor(36*7/255) is 0: the two floor
	// divisions are not inverses and a mid level decays on re-encode.
	// Games depend on the exact pair, so this stays as is.
	p, err := Decode(Encode(Palette{{R: 36, G: 36, B: 36}}))
	require.NoError(t, err)
	assert.Equal(t, Color{0, 0, 0}, p[0])

	// Packed layout: 0000BBB0GGG0RRR0.
	b := Encode(Palette{{R: 255, G: 109, B: 0}})
	assert.Equal(t, []byte{0x00, 0x4e}, b[:2]) // B=0 G=2 R=7 -> 0x004E
}

func TestValidThreshold(t *testing.T) {
	// Exactly 12 valid words passes, 11 does not.
	build := func(valid int) []byte {
		b := make([]byte, Bytes)
		for i := 0; i < Size; i++ {
			if i < valid {
				b[i*2], b[i*2+1] = 0x01, 0xff
			} else {
				b[i*2], b[i*2+1] = 0xff, 0xff
			}
		}
		return b
	}

	assert.True(t, Valid(build(12)))
	assert.False(t, Valid(build(11)))
	assert.False(t, Valid(make([]byte, 16)))
}

func TestExtractKnownOffsetPriority(t *testing.T) {
	data := make([]byte, 0x30000+Bytes)
	for i := range data {
		data[i] = 0xff
	}

	copy(data[0x30000:], gradient())

	other := make([]byte, Bytes) // all black, distinct from the gradient
	copy(data[64:], other)

	found := Extract(data, 0)
	require.Len(t, found, 2)
	assert.Equal(t, 0x30000, found[0].Offset)
	assert.Equal(t, 64, found[1].Offset)
}

func TestExtractDedup(t *testing.T) {
	data := make([]byte, 0x30000+Bytes)
	for i := range data {
		data[i] = 0xff
	}

	// Byte-identical palettes at a known offset and in the open scan.
	copy(data[0x30000:], gradient())
	copy(data[64:], gradient())

	found := Extract(data, 0)
	require.Len(t, found, 1)
	assert.Equal(t, 0x30000, found[0].Offset)
}

func TestExtractMaxScan(t *testing.T) {
	// Each 32 byte window decodes to a distinct palette.
	data := make([]byte, 32*Bytes)
	for i := 0; i < 32; i++ {
		word := uint16(i&7)<<1 | uint16(i>>3)<<5
		for j := 0; j < Size; j++ {
			data[i*Bytes+j*2] = byte(word >> 8)
			data[i*Bytes+j*2+1] = byte(word)
		}
	}

	found := Extract(data, 10)
	assert.Len(t, found, 10)
}

func TestApply(t *testing.T) {
	data := make([]byte, 0x20000+Bytes)
	for i := range data {
		data[i] = 0xff
	}
	// A valid region at the first known offset.
	for i := 0x20000; i < 0x20000+Bytes; i++ {
		data[i] = 0
	}

	out, err := Apply(data, 0, mono())
	require.NoError(t, err)
	assert.Equal(t, Encode(mono()), out[0x20000:0x20000+Bytes])

	// Original buffer untouched.
	assert.Equal(t, byte(0), data[0x20000])

	_, err = Apply(data, 1, mono())
	assert.Equal(t, ErrIndexNotFound, err)
}
