package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// window returns a buffer of the given size with n leading non-zero
// bytes.
func window(size, n int) []byte {
	b := make([]byte, size)
	for i := 0; i < n; i++ {
		b[i] = 0x42
	}
	return b
}

func TestGraphicsPredicate(t *testing.T) {
	assert.False(t, Graphics(window(GraphicsWindow, 0)))
	assert.False(t, Graphics(window(GraphicsWindow, 7)))
	assert.True(t, Graphics(window(GraphicsWindow, 8)))
	assert.True(t, Graphics(window(GraphicsWindow, 28)))
	assert.False(t, Graphics(window(GraphicsWindow, 29)))
	assert.False(t, Graphics(window(GraphicsWindow, 32)))
}

func TestSpritePredicate(t *testing.T) {
	assert.False(t, Sprite(window(SpriteWindow, 15)))
	assert.True(t, Sprite(window(SpriteWindow, 16)))
	assert.True(t, Sprite(window(SpriteWindow, 48)))
	assert.False(t, Sprite(window(SpriteWindow, 49)))
}

func TestTilemapPredicate(t *testing.T) {
	// All entries 0xFFFF: nothing below the limit.
	b := make([]byte, TilemapWindow)
	for i := range b {
		b[i] = 0xff
	}
	assert.False(t, Tilemap(b))

	// 33 plausible entries is one more than the threshold.
	for i := 0; i < 33; i++ {
		b[i*2] = 0x00
		b[i*2+1] = 0x10
	}
	assert.True(t, Tilemap(b))

	// Exactly 32 is not enough.
	b[32*2] = 0xff
	b[32*2+1] = 0xff
	assert.False(t, Tilemap(b))
}

func TestScan(t *testing.T) {
	// Three windows: matching, padding, matching.
	data := append(append(window(32, 16), window(32, 0)...), window(32, 16)...)

	regions := Scan(data, 32, Graphics, 0)
	require.Len(t, regions, 2)
	assert.Equal(t, 0, regions[0].Offset)
	assert.Equal(t, 64, regions[1].Offset)
	assert.Equal(t, data[64:96], regions[1].Data)
}

func TestScanCap(t *testing.T) {
	var data []byte
	for i := 0; i < 10; i++ {
		data = append(data, window(32, 16)...)
	}

	regions := Scan(data, 32, Graphics, 3)
	assert.Len(t, regions, 3)
}

func TestScanIgnoresPartialWindow(t *testing.T) {
	// A trailing partial window is never tested.
	data := append(window(32, 16), window(16, 16)...)
	regions := Scan(data, 32, Graphics, 0)
	assert.Len(t, regions, 1)
}
