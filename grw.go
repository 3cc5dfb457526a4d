/*
Package grw is a toolkit for inspecting and modifying Sega Mega Drive /
Genesis cartridge ROM images: palettes, text, graphics assets, headers
and raw hex level editing.
*/
package grw

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/grw/header"
)

// Resource ceilings enforced at the file I/O boundary. The codecs and
// scanners themselves only ever see in-memory buffers.
const (
	// MaxROMSize is the largest cartridge image accepted, 16 MiB.
	MaxROMSize = 16 << 20

	// MaxJSONSize is the largest sidecar JSON document accepted, 10 MiB.
	MaxJSONSize = 10 << 20

	// MaxOutputFiles caps the files written by one extraction run.
	MaxOutputFiles = 10000

	// MaxOutputSize caps the cumulative bytes written by one extraction
	// run, 100 MiB.
	MaxOutputSize = 100 << 20
)

// Workshop ties the ROM tools to an optional game database and a logger.
type Workshop struct {
	db     *GameDB
	logger *log.Logger
}

// New returns a Workshop. db may be nil, in which case analysis skips the
// database lookup.
func New(db *GameDB, logger *log.Logger) *Workshop {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Workshop{
		db:     db,
		logger: logger,
	}
}

// readROM loads a ROM image, enforcing the size ceiling and converting
// interleaved dump formats to natural byte order based on the file
// extension.
func (w *Workshop) readROM(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxROMSize {
		return nil, fmt.Errorf("grw: %s is %d bytes, larger than the %d byte limit", path, info.Size(), MaxROMSize)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".smd":
		data = header.Deinterleave(data, header.FormatSMD)
	case ".md":
		data = header.Deinterleave(data, header.FormatMD)
	}

	return data, nil
}

// writeROM writes a modified image next to the tools' other artifacts.
func (w *Workshop) writeROM(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// readJSON loads a sidecar document, enforcing the size ceiling.
func readJSON(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxJSONSize {
		return nil, fmt.Errorf("grw: %s is %d bytes, larger than the %d byte limit", path, info.Size(), MaxJSONSize)
	}
	return ioutil.ReadFile(path)
}

// stem returns the base filename without its extension, used to name
// artifacts after the ROM they came from.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
