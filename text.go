package grw

import (
	"encoding/json"
	"io/ioutil"

	"github.com/bodgit/grw/text"
)

// ExtractText scans a ROM for printable strings. Passing no regions scans
// the areas that commonly hold text.
func (w *Workshop) ExtractText(path string, minLength int, regions []text.Region) ([]text.String, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}
	strings := text.Find(data, minLength, regions)
	w.logger.Printf("Found %d text strings in %q\n", len(strings), path)
	return strings, nil
}

// ExportText writes extracted strings to a JSON document suitable for
// translation work.
func (w *Workshop) ExportText(path string, minLength int, regions []text.Region, output string) error {
	strings, err := w.ExtractText(path, minLength, regions)
	if err != nil {
		return err
	}

	doc := struct {
		ROM     string        `json:"rom_file"`
		Found   int           `json:"strings_found"`
		Strings []text.String `json:"strings"`
	}{
		ROM:     path,
		Found:   len(strings),
		Strings: strings,
	}

	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(output, b, 0644)
}

// ReplaceText overwrites a string at a known offset and writes the
// modified ROM to output. The old text must still be present; a mismatch
// usually means the offsets came from a different revision of the ROM.
func (w *Workshop) ReplaceText(path string, offset int, oldText, newText, output string) error {
	data, err := w.readROM(path)
	if err != nil {
		return err
	}

	modified, err := text.Replace(data, offset, oldText, newText)
	if err != nil {
		return err
	}

	return w.writeROM(output, modified)
}
