package grw

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/bodgit/grw/hexdump"
)

// maxPatchChanges caps the change records stored in a patch file; the
// true total is still reported.
const maxPatchChanges = 100

// PatchFile is the JSON patch artifact produced by CreatePatch.
type PatchFile struct {
	OriginalROM  string        `json:"original_rom"`
	ModifiedROM  string        `json:"modified_rom"`
	TotalChanges int           `json:"total_changes"`
	Changes      []PatchChange `json:"changes"`
}

// PatchChange is one byte difference; values are hex strings, or "EOF"
// where one ROM has ended.
type PatchChange struct {
	Offset   int    `json:"offset"`
	ROM1Byte string `json:"rom1_byte"`
	ROM2Byte string `json:"rom2_byte"`
}

func diffByte(v int) string {
	if v == hexdump.EOF {
		return "EOF"
	}
	return fmt.Sprintf("%02X", v)
}

// HexView formats a slice of a ROM as hex dump lines.
func (w *Workshop) HexView(path string, offset, length int) ([]string, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}
	return hexdump.View(data, offset, length), nil
}

// SearchBytes returns every offset at which pattern occurs in the ROM.
func (w *Workshop) SearchBytes(path string, pattern []byte) ([]int, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}
	return hexdump.Search(data, pattern), nil
}

// CompareROMs reports the byte level differences between two images.
func (w *Workshop) CompareROMs(path1, path2 string) ([]hexdump.Diff, error) {
	data1, err := w.readROM(path1)
	if err != nil {
		return nil, err
	}
	data2, err := w.readROM(path2)
	if err != nil {
		return nil, err
	}
	return hexdump.Compare(data1, data2), nil
}

// WriteBytes overwrites bytes at offset and writes the modified image to
// output.
func (w *Workshop) WriteBytes(path string, offset int, p []byte, output string) error {
	data, err := w.readROM(path)
	if err != nil {
		return err
	}

	modified, err := hexdump.Write(data, offset, p)
	if err != nil {
		return err
	}

	return w.writeROM(output, modified)
}

// DumpRegion writes the bytes in [start, end) to a file.
func (w *Workshop) DumpRegion(path string, start, end int, output string) error {
	data, err := w.readROM(path)
	if err != nil {
		return err
	}
	if start < 0 || end > len(data) || start > end {
		return hexdump.ErrOutOfRange
	}
	return ioutil.WriteFile(output, data[start:end], 0644)
}

// CreatePatch diffs two ROMs and writes a JSON patch artifact recording
// the first changes. The total count covers every difference found, up to
// the comparison cap.
func (w *Workshop) CreatePatch(originalPath, modifiedPath, output string) (*PatchFile, error) {
	diffs, err := w.CompareROMs(originalPath, modifiedPath)
	if err != nil {
		return nil, err
	}

	patch := &PatchFile{
		OriginalROM:  originalPath,
		ModifiedROM:  modifiedPath,
		TotalChanges: len(diffs),
	}
	for i, d := range diffs {
		if i >= maxPatchChanges {
			break
		}
		patch.Changes = append(patch.Changes, PatchChange{
			Offset:   d.Offset,
			ROM1Byte: diffByte(d.Old),
			ROM2Byte: diffByte(d.New),
		})
	}

	b, err := json.MarshalIndent(patch, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := ioutil.WriteFile(output, b, 0644); err != nil {
		return nil, err
	}
	return patch, nil
}
