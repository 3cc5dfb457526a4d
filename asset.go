package grw

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bodgit/grw/scan"
)

// ErrAudioUnsupported is returned by ExtractAudio: sample formats vary
// per sound driver and no decode is attempted.
var ErrAudioUnsupported = errors.New("grw: audio extraction is not supported")

// ExtractResult reports what one asset extraction pass produced.
type ExtractResult struct {
	Extracted int    `json:"extracted"`
	OutputDir string `json:"output_directory"`
	Format    string `json:"format,omitempty"`
}

// outputBudget enforces the per-run file count and cumulative size
// ceilings at the I/O boundary.
type outputBudget struct {
	files int
	bytes int64
}

func (o *outputBudget) write(path string, data []byte) error {
	if o.files+1 > MaxOutputFiles {
		return fmt.Errorf("grw: extraction would exceed %d output files", MaxOutputFiles)
	}
	if o.bytes+int64(len(data)) > MaxOutputSize {
		return fmt.Errorf("grw: extraction would exceed %d output bytes", MaxOutputSize)
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return err
	}
	o.files++
	o.bytes += int64(len(data))
	return nil
}

// extractRegions writes every region a scan finds into dir as numbered
// binary files.
func (w *Workshop) extractRegions(data []byte, dir, prefix string, window int, pred scan.Predicate, max int) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	var budget outputBudget
	regions := scan.Scan(data, window, pred, max)
	for i, r := range regions {
		name := filepath.Join(dir, fmt.Sprintf("%s_%04d.bin", prefix, i))
		if err := budget.write(name, r.Data); err != nil {
			return i, err
		}
	}
	return len(regions), nil
}

// ExtractGraphics writes every graphics-like 32 byte tile to dir.
// maxTiles of zero means the default cap of 1000.
func (w *Workshop) ExtractGraphics(path, dir string, maxTiles int) (*ExtractResult, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}
	if maxTiles <= 0 {
		maxTiles = scan.MaxGraphics
	}

	n, err := w.extractRegions(data, dir, "tile", scan.GraphicsWindow, scan.Graphics, maxTiles)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Extracted: n, OutputDir: dir, Format: "8x8_4bpp_planar"}, nil
}

// ExtractTilemaps writes every tilemap-like 128 byte window to dir.
func (w *Workshop) ExtractTilemaps(path, dir string) (*ExtractResult, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}

	n, err := w.extractRegions(data, dir, "tilemap", scan.TilemapWindow, scan.Tilemap, scan.MaxTilemaps)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Extracted: n, OutputDir: dir}, nil
}

// ExtractSprites writes every sprite-like 64 byte window to dir.
func (w *Workshop) ExtractSprites(path, dir string) (*ExtractResult, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}

	n, err := w.extractRegions(data, dir, "sprite", scan.SpriteWindow, scan.Sprite, scan.MaxSprites)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Extracted: n, OutputDir: dir}, nil
}

// ExtractAudio is a stub; Mega Drive audio is driver specific and out of
// scope.
func (w *Workshop) ExtractAudio(path, dir string) (*ExtractResult, error) {
	return nil, ErrAudioUnsupported
}

// GraphicsIndex runs all asset scans and writes a JSON index of the
// results.
func (w *Workshop) GraphicsIndex(path, dir string) (string, error) {
	graphics, err := w.ExtractGraphics(path, filepath.Join(dir, stem(path)+"_graphics"), 0)
	if err != nil {
		return "", err
	}
	tilemaps, err := w.ExtractTilemaps(path, filepath.Join(dir, stem(path)+"_tilemaps"))
	if err != nil {
		return "", err
	}
	sprites, err := w.ExtractSprites(path, filepath.Join(dir, stem(path)+"_sprites"))
	if err != nil {
		return "", err
	}

	doc := struct {
		ROM      string         `json:"rom"`
		Graphics *ExtractResult `json:"graphics"`
		Tilemaps *ExtractResult `json:"tilemaps"`
		Sprites  *ExtractResult `json:"sprites"`
	}{path, graphics, tilemaps, sprites}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", err
	}

	index := filepath.Join(dir, stem(path)+"_graphics_index.json")
	if err := ioutil.WriteFile(index, b, 0644); err != nil {
		return "", err
	}
	return index, nil
}
