package grw

import (
	"errors"
	"image"
	"io"
	"os"

	"github.com/bodgit/grw/palette"
	"github.com/bodgit/grw/scan"
	"github.com/bodgit/grw/tile"
)

// ErrRenderingUnavailable is returned when a Renderer was built without
// an image encoder.
var ErrRenderingUnavailable = errors.New("grw: no image encoder configured")

// Encoder writes a raster in some image file format, typically
// image/png.Encode.
type Encoder func(io.Writer, image.Image) error

// Renderer turns tile data into image files. The encoder is resolved once
// by the caller and injected here; a nil encoder makes every render call
// fail with ErrRenderingUnavailable rather than failing at write time.
type Renderer struct {
	w      *Workshop
	encode Encoder
}

// NewRenderer returns a Renderer using the given encoder, which may be
// nil.
func (w *Workshop) NewRenderer(encode Encoder) *Renderer {
	return &Renderer{
		w:      w,
		encode: encode,
	}
}

// Available reports whether rendering can produce output.
func (r *Renderer) Available() bool {
	return r.encode != nil
}

func (r *Renderer) save(path string, m image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.encode(f, m)
}

// tileAt reads one tile's worth of bytes from a ROM image.
func (r *Renderer) tileAt(path string, offset int) ([]byte, error) {
	data, err := r.w.readROM(path)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset+tile.Bytes > len(data) {
		return nil, tile.ErrTileSize
	}
	return data[offset : offset+tile.Bytes], nil
}

// RenderTile renders the tile at offset through p and writes it to
// output.
func (r *Renderer) RenderTile(path string, offset int, p palette.Palette, scale int, output string) error {
	if !r.Available() {
		return ErrRenderingUnavailable
	}

	b, err := r.tileAt(path, offset)
	if err != nil {
		return err
	}
	t, err := tile.Decode(b)
	if err != nil {
		return err
	}

	return r.save(output, tile.Render(t, p, scale))
}

// PreviewTile renders the tile at offset with an optional pixel grid
// overlay.
func (r *Renderer) PreviewTile(path string, offset int, p palette.Palette, scale int, grid bool, output string) error {
	if !r.Available() {
		return ErrRenderingUnavailable
	}

	b, err := r.tileAt(path, offset)
	if err != nil {
		return err
	}
	t, err := tile.Decode(b)
	if err != nil {
		return err
	}

	return r.save(output, tile.Preview(t, p, scale, grid))
}

// RenderSheet renders maxTiles consecutive tiles starting at offset as a
// tile sheet.
func (r *Renderer) RenderSheet(path string, offset, maxTiles int, p palette.Palette, columns, scale int, output string) error {
	if !r.Available() {
		return ErrRenderingUnavailable
	}

	data, err := r.w.readROM(path)
	if err != nil {
		return err
	}

	var tiles [][]byte
	for i := offset; i+tile.Bytes <= len(data) && len(tiles) < maxTiles; i += tile.Bytes {
		tiles = append(tiles, data[i:i+tile.Bytes])
	}

	m, err := tile.Sheet(tiles, p, columns, scale)
	if err != nil {
		return err
	}

	return r.save(output, m)
}

// ExtractAndRender scans the whole ROM for graphics-like tiles and
// renders them as one sheet. Returns the number of tiles rendered.
func (r *Renderer) ExtractAndRender(path string, p palette.Palette, maxTiles, columns, scale int, output string) (int, error) {
	if !r.Available() {
		return 0, ErrRenderingUnavailable
	}

	data, err := r.w.readROM(path)
	if err != nil {
		return 0, err
	}
	if maxTiles <= 0 {
		maxTiles = scan.MaxGraphics
	}

	regions := scan.Scan(data, scan.GraphicsWindow, scan.Graphics, maxTiles)
	if len(regions) == 0 {
		return 0, nil
	}

	tiles := make([][]byte, 0, len(regions))
	for _, region := range regions {
		tiles = append(tiles, region.Data)
	}

	m, err := tile.Sheet(tiles, p, columns, scale)
	if err != nil {
		return 0, err
	}

	if err := r.save(output, m); err != nil {
		return 0, err
	}
	return len(tiles), nil
}
