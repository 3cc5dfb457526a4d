package grw

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io/ioutil"
	"os"

	"github.com/bodgit/grw/palette"
	"github.com/ericpauley/go-quantize/quantize"
)

// paletteFormat names the palette JSON interchange format.
const paletteFormat = "genesis_9bit_rgb"

// paletteJSON is the palette interchange document.
type paletteJSON struct {
	Format         string      `json:"format"`
	BitsPerChannel int         `json:"bits_per_channel"`
	TotalColors    int         `json:"total_colors"`
	Colors         []colorJSON `json:"colors"`
}

type colorJSON struct {
	R     int `json:"r"`
	G     int `json:"g"`
	B     int `json:"b"`
	Index int `json:"index"`
}

func paletteToJSON(p palette.Palette) paletteJSON {
	doc := paletteJSON{
		Format:         paletteFormat,
		BitsPerChannel: 3,
		TotalColors:    palette.Size,
	}
	for i, c := range p {
		doc.Colors = append(doc.Colors, colorJSON{R: int(c.R), G: int(c.G), B: int(c.B), Index: i})
	}
	return doc
}

func paletteFromJSON(doc paletteJSON) (palette.Palette, error) {
	var p palette.Palette
	if len(doc.Colors) != palette.Size {
		return p, fmt.Errorf("grw: palette must have %d colors, got %d", palette.Size, len(doc.Colors))
	}
	for i, c := range doc.Colors {
		if c.R < 0 || c.R > 255 || c.G < 0 || c.G > 255 || c.B < 0 || c.B > 255 {
			return p, fmt.Errorf("grw: color %d out of range", i)
		}
		p[i] = palette.Color{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B)}
	}
	return p, nil
}

// ExtractPalettes scans a ROM image for palette regions. maxScan bounds
// the sliding scan; zero means the default of 100.
func (w *Workshop) ExtractPalettes(path string, maxScan int) ([]palette.Found, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}
	found := palette.Extract(data, maxScan)
	w.logger.Printf("Found %d palettes in %q\n", len(found), path)
	return found, nil
}

// ExportPalettes writes every palette found in a ROM to a JSON document.
func (w *Workshop) ExportPalettes(path string, maxScan int, output string) error {
	found, err := w.ExtractPalettes(path, maxScan)
	if err != nil {
		return err
	}

	doc := struct {
		ROM      string `json:"rom_file"`
		Found    int    `json:"palettes_found"`
		Palettes []struct {
			Offset  int         `json:"offset"`
			Palette paletteJSON `json:"palette"`
		} `json:"palettes"`
	}{
		ROM:   path,
		Found: len(found),
	}
	for _, f := range found {
		doc.Palettes = append(doc.Palettes, struct {
			Offset  int         `json:"offset"`
			Palette paletteJSON `json:"palette"`
		}{Offset: f.Offset, Palette: paletteToJSON(f.Palette)})
	}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(output, b, 0644)
}

// ImportPalette reads a single palette interchange document.
func (w *Workshop) ImportPalette(path string) (palette.Palette, error) {
	var p palette.Palette

	b, err := readJSON(path)
	if err != nil {
		return p, err
	}

	var doc paletteJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return p, err
	}

	return paletteFromJSON(doc)
}

// ApplyPalette writes a copy of the ROM with the index'th known-offset
// palette replaced by p.
func (w *Workshop) ApplyPalette(path string, index int, p palette.Palette, output string) error {
	data, err := w.readROM(path)
	if err != nil {
		return err
	}

	modified, err := palette.Apply(data, index, p)
	if err != nil {
		return err
	}

	return w.writeROM(output, modified)
}

// PaletteFromImage quantizes any decodable image down to a 16 color
// Genesis palette, for recoloring a game from a reference screenshot.
func (w *Workshop) PaletteFromImage(path string) (palette.Palette, error) {
	var p palette.Palette

	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return p, err
	}

	q := quantize.MedianCutQuantizer{}
	quantized := q.Quantize(make(color.Palette, 0, palette.Size), m)

	for i, c := range quantized {
		if i >= palette.Size {
			break
		}
		r, g, b, _ := c.RGBA()
		p[i] = palette.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
	}

	return p, nil
}
