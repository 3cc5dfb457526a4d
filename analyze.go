package grw

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/bodgit/grw/header"
)

// ROMInfo summarises a cartridge image.
type ROMInfo struct {
	Name        string `json:"name"`
	KnownAs     string `json:"known_as,omitempty"`
	Region      string `json:"region"`
	Size        int    `json:"size"`
	Checksum    string `json:"checksum"`
	ROMType     string `json:"rom_type"`
	HeaderValid bool   `json:"header_valid"`

	// Internal cartridge checksum, as verified by the console BIOS.
	InternalChecksumValid bool   `json:"internal_checksum_valid"`
	InternalStored        uint16 `json:"internal_stored"`
	InternalCalculated    uint16 `json:"internal_calculated"`
}

// Statistics describes the byte level makeup of an image.
type Statistics struct {
	TotalSize   int     `json:"total_size"`
	NullBytes   int     `json:"null_bytes"`
	FFBytes     int     `json:"ff_bytes"`
	UniqueBytes int     `json:"unique_bytes"`
	Entropy     float64 `json:"entropy"`
}

// Analyze reads a ROM image and reports its header fields, checksums and,
// when a game database is available, the canonical name its content CRC
// is recorded under.
func (w *Workshop) Analyze(path string) (*ROMInfo, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}

	h := header.Parse(data)
	info := &ROMInfo{
		Name:        h.GameName,
		Region:      h.Region,
		Size:        len(data),
		ROMType:     strings.ToLower(filepath.Ext(path)),
		HeaderValid: h.HeaderValid,
	}

	if c, err := header.ValidateChecksum(data); err == nil {
		info.InternalChecksumValid = c.Valid
		info.InternalStored = c.Stored
		info.InternalCalculated = c.Calculated
	}

	crc, err := crcFile(path)
	if err != nil {
		return nil, err
	}
	info.Checksum = crc

	if w.db != nil {
		name, region, err := w.db.FindGameByCRC(crc)
		if err != nil {
			return nil, err
		}
		if name != "" {
			info.KnownAs = name
			if region != "" && info.Region == "UNKNOWN" {
				info.Region = region
			}
		} else {
			w.logger.Printf("No database match for %q, CRC %s\n", path, crc)
		}
	}

	return info, nil
}

// IdentifyCue identifies a Mega CD dump from its cue sheet via the game
// database.
func (w *Workshop) IdentifyCue(path string) (string, error) {
	crc, err := crcCueFile(path)
	if err != nil {
		return "", err
	}
	if w.db == nil {
		return "", nil
	}
	name, _, err := w.db.FindGameByCRC(crc)
	return name, err
}

// Statistics computes byte frequency statistics and Shannon entropy for a
// ROM image.
func (w *Workshop) Statistics(path string) (*Statistics, error) {
	data, err := w.readROM(path)
	if err != nil {
		return nil, err
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	stats := &Statistics{
		TotalSize: len(data),
		NullBytes: counts[0x00],
		FFBytes:   counts[0xff],
	}

	for _, n := range counts {
		if n == 0 {
			continue
		}
		stats.UniqueBytes++
		p := float64(n) / float64(len(data))
		stats.Entropy -= p * math.Log2(p)
	}

	return stats, nil
}

// FindHeader reports where in the image the console name signature lives,
// for dumps with unusual padding or headers.
func (w *Workshop) FindHeader(path string) (int, bool, error) {
	data, err := w.readROM(path)
	if err != nil {
		return 0, false, err
	}
	offset, ok := header.FindOffset(data)
	return offset, ok, nil
}
