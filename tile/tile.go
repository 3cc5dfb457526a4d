/*
Package tile implements the Mega Drive 4-bit planar tile format.

A tile is an 8 by 8 pixel block stored as 32 bytes: four bitplane bytes per
row, plane 0 first (least significant bit of the color index), with bit 7
of each plane byte holding the leftmost pixel. Combined with a 16 color
palette a tile renders to an RGB raster.
*/
package tile

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/bodgit/grw/palette"
)

const (
	// Width and Height are the pixel dimensions of a tile.
	Width  = 8
	Height = Width

	// Bytes is the encoded size of a tile.
	Bytes = 32

	planes = 4
)

var (
	// ErrTileSize is returned when decoding anything other than 32 bytes.
	ErrTileSize = errors.New("tile: data must be 32 bytes")

	// ErrBadLayout is returned by Sheet for a non-positive column count
	// or scale factor.
	ErrBadLayout = errors.New("tile: columns and scale must be at least 1")
)

// gridColor is the overlay used by Preview.
var gridColor = color.RGBA{0x80, 0x80, 0x80, 0xff}

// Tile is a decoded 8x8 block of 4-bit color indices.
type Tile [Height][Width]uint8

// Decode unpacks 32 bytes of planar data into a Tile.
func Decode(b []byte) (*Tile, error) {
	if len(b) != Bytes {
		return nil, ErrTileSize
	}
	var t Tile
	for y := 0; y < Height; y++ {
		row := b[y*planes : y*planes+planes]
		for x := 0; x < Width; x++ {
			var index uint8
			for p := 0; p < planes; p++ {
				index |= row[p] >> uint(7-x) & 1 << uint(p)
			}
			t[y][x] = index
		}
	}
	return &t, nil
}

// Render draws the tile through p at the given scale using nearest
// neighbor replication. A scale below 1 is treated as 1.
func Render(t *Tile, p palette.Palette, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	m := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := p[t[y][x]]
			r := image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale)
			draw.Draw(m, r, image.NewUniform(color.RGBA{c.R, c.G, c.B, 0xff}), image.Point{}, draw.Src)
		}
	}
	return m
}

// Sheet lays out tiles left to right, top to bottom, columns tiles per
// row. Tiles that fail to decode are skipped, leaving their cell as the
// black background.
func Sheet(tiles [][]byte, p palette.Palette, columns, scale int) (*image.RGBA, error) {
	if columns < 1 || scale < 1 {
		return nil, ErrBadLayout
	}

	rows := (len(tiles) + columns - 1) / columns
	side := Width * scale
	m := image.NewRGBA(image.Rect(0, 0, columns*side, rows*side))
	draw.Draw(m, m.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0xff}), image.Point{}, draw.Src)

	for i, b := range tiles {
		t, err := Decode(b)
		if err != nil {
			continue
		}
		x := i % columns * side
		y := i / columns * side
		cell := Render(t, p, scale)
		draw.Draw(m, image.Rect(x, y, x+side, y+side), cell, image.Point{}, draw.Src)
	}

	return m, nil
}

// Preview renders a single tile, optionally overlaid with a one pixel grid
// at every source pixel boundary. Only interior boundaries are drawn.
func Preview(t *Tile, p palette.Palette, scale int, grid bool) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	m := Render(t, p, scale)
	if !grid {
		return m
	}
	side := Width * scale
	for i := 1; i < Width; i++ {
		pos := i * scale
		draw.Draw(m, image.Rect(pos, 0, pos+1, side), image.NewUniform(gridColor), image.Point{}, draw.Src)
		draw.Draw(m, image.Rect(0, pos, side, pos+1), image.NewUniform(gridColor), image.Point{}, draw.Src)
	}
	return m
}
