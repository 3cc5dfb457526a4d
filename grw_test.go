package grw

import (
	"encoding/json"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/grw/palette"
	"github.com/bodgit/grw/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testROM builds a small but complete cartridge image: valid header, USA
// region, a gradient palette at 0x1000 and three NUL separated strings at
// 0x2000.
func testROM() []byte {
	data := make([]byte, 8192)
	copy(data[0x100:], "SEGA GENESIS    ")
	copy(data[0x120:], "TEST GAME")
	copy(data[0x1f0:], "U  ")

	for i := 0; i < 16; i++ {
		level := uint16(i & 7)
		word := level<<5 | level<<1
		data[0x1000+i*2] = byte(word >> 8)
		data[0x1000+i*2+1] = byte(word)
	}

	copy(data[0x2000:], "HELLO WORLD\x00GENESIS ROM\x00TEST DATA\x00")
	return data
}

func writeTestROM(t *testing.T, dir string) string {
	path := filepath.Join(dir, "test.bin")
	require.NoError(t, ioutil.WriteFile(path, testROM(), 0644))
	return path
}

func tempDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "grw")
	require.NoError(t, err)
	return dir, func() { os.RemoveAll(dir) }
}

func TestAnalyze(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	info, err := w.Analyze(writeTestROM(t, dir))
	require.NoError(t, err)

	assert.Equal(t, "TEST GAME", info.Name)
	assert.Equal(t, "USA", info.Region)
	assert.Equal(t, 8192, info.Size)
	assert.True(t, info.HeaderValid)
	assert.Len(t, info.Checksum, 8)
	assert.False(t, info.InternalChecksumValid) // header stores no checksum
}

func TestExtractPalettes(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	found, err := w.ExtractPalettes(writeTestROM(t, dir), 0)
	require.NoError(t, err)
	require.NotEmpty(t, found)

	var gradient *palette.Found
	for i := range found {
		if found[i].Offset == 0x1000 {
			gradient = &found[i]
		}
	}
	require.NotNil(t, gradient, "gradient palette at 0x1000 not found")
	assert.Equal(t, palette.Color{R: 255, G: 255}, gradient.Palette[15])
	assert.Equal(t, palette.Color{}, gradient.Palette[0])
}

func TestExtractText(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	strings, err := w.ExtractText(writeTestROM(t, dir), 4, []text.Region{{Start: 0x2000, End: 0x2400}})
	require.NoError(t, err)
	require.Len(t, strings, 3)
	assert.Equal(t, "HELLO WORLD", strings[0].Text)
	assert.Equal(t, "GENESIS ROM", strings[1].Text)
	assert.Equal(t, "TEST DATA", strings[2].Text)
}

func TestReplaceText(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	path := writeTestROM(t, dir)
	output := filepath.Join(dir, "patched.bin")

	require.NoError(t, w.ReplaceText(path, 0x2000, "HELLO WORLD", "HI", output))

	data, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []byte("HI\x00\x00\x00\x00\x00\x00\x00\x00\x00"), data[0x2000:0x200b])
}

func TestPaletteJSONRoundTrip(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	var p palette.Palette
	for i := range p {
		p[i] = palette.Color{R: uint8(i), G: uint8(i * 2), B: uint8(i * 3)}
	}

	doc := paletteToJSON(p)
	assert.Equal(t, paletteFormat, doc.Format)
	assert.Equal(t, 3, doc.BitsPerChannel)
	assert.Equal(t, 16, doc.TotalColors)

	b, err := json.Marshal(&doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "palette.json")
	require.NoError(t, ioutil.WriteFile(path, b, 0644))

	w := New(nil, nil)
	got, err := w.ImportPalette(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestImportPaletteValidation(t *testing.T) {
	_, err := paletteFromJSON(paletteJSON{Colors: make([]colorJSON, 15)})
	assert.Error(t, err)

	bad := paletteJSON{Colors: make([]colorJSON, 16)}
	bad.Colors[3].R = 300
	_, err = paletteFromJSON(bad)
	assert.Error(t, err)
}

func TestCreatePatch(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	original := writeTestROM(t, dir)
	modified := filepath.Join(dir, "modified.bin")
	require.NoError(t, w.WriteBytes(original, 0x400, []byte{1, 2, 3}, modified))

	output := filepath.Join(dir, "changes.patch.json")
	patch, err := w.CreatePatch(original, modified, output)
	require.NoError(t, err)

	assert.Equal(t, 3, patch.TotalChanges)
	require.Len(t, patch.Changes, 3)
	assert.Equal(t, 0x400, patch.Changes[0].Offset)
	assert.Equal(t, "00", patch.Changes[0].ROM1Byte)
	assert.Equal(t, "01", patch.Changes[0].ROM2Byte)

	b, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	var onDisk PatchFile
	require.NoError(t, json.Unmarshal(b, &onDisk))
	assert.Equal(t, patch.TotalChanges, onDisk.TotalChanges)
}

func TestHexView(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	lines, err := w.HexView(writeTestROM(t, dir), 0x100, 16)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "SEGA GENESIS")
}

func TestExtractGraphics(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	out := filepath.Join(dir, "tiles")
	result, err := w.ExtractGraphics(writeTestROM(t, dir), out, 10)
	require.NoError(t, err)

	// The header and text regions qualify as graphics-like windows.
	assert.True(t, result.Extracted > 0)
	files, err := ioutil.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, files, result.Extracted)
}

func TestRendererUnavailable(t *testing.T) {
	w := New(nil, nil)
	r := w.NewRenderer(nil)
	assert.False(t, r.Available())

	var p palette.Palette
	err := r.RenderTile("nonexistent", 0, p, 1, "out.png")
	assert.Equal(t, ErrRenderingUnavailable, err)
}

func TestRenderTile(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	w := New(nil, nil)
	r := w.NewRenderer(png.Encode)
	require.True(t, r.Available())

	var p palette.Palette
	p[0] = palette.Color{R: 255}

	output := filepath.Join(dir, "tile.png")
	require.NoError(t, r.RenderTile(writeTestROM(t, dir), 0x1000, p, 2, output))

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	m, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, m.Bounds().Dx())
}

func TestAudioUnsupported(t *testing.T) {
	w := New(nil, nil)
	_, err := w.ExtractAudio("whatever.bin", "out")
	assert.Equal(t, ErrAudioUnsupported, err)
}

func TestScanPipeline(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	writeTestROM(t, dir)

	w := New(nil, nil)
	require.NoError(t, w.Scan(dir))

	b, err := ioutil.ReadFile(filepath.Join(dir, ReportFilename))
	require.NoError(t, err)

	var report struct {
		Entries []reportEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(b, &report))
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "TEST GAME", report.Entries[0].Name)
	assert.True(t, report.Entries[0].HeaderValid)
	assert.Len(t, report.Entries[0].FilenameCRC, 8)
}
