package grw

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	crc "github.com/bodgit/grw/crc32"
	"github.com/vchimishuk/chub/cue"
)

const (
	sectorHeader = 16
	sectorSize   = 2048
)

const filenameTrim = 56

// firstDataTrack returns the file and track type of the first data track
// in a cue sheet. Mega CD games always carry their header in the first
// data track.
func firstDataTrack(sheet *cue.Sheet) (string, cue.TrackDataType, error) {
	for _, file := range sheet.Files {
		for _, track := range file.Tracks {
			switch track.DataType {
			case cue.DataTypeMode1_2048, cue.DataTypeMode1_2352:
				return file.Name, track.DataType, nil
			}
		}
	}
	return "", cue.DataTypeAudio, errors.New("audio-only CDs cannot be identified")
}

// crcCueFile identifies a Mega CD dump by hashing the first sector of its
// first data track, after checking the SEGA signature is present.
func crcCueFile(file string) (string, error) {
	sheet, err := cue.ParseFile(file)
	if err != nil {
		return "", err
	}

	fileName, dataType, err := firstDataTrack(sheet)
	if err != nil {
		return "", err
	}

	f, err := os.Open(filepath.Join(filepath.Dir(file), fileName))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if dataType == cue.DataTypeMode1_2352 {
		if _, err := f.Seek(sectorHeader, os.SEEK_CUR); err != nil {
			return "", err
		}
	}

	h := crc32.NewIEEE()
	var b bytes.Buffer

	if _, err := io.CopyN(io.MultiWriter(h, &b), f, sectorSize); err != nil {
		return "", err
	}

	if !bytes.Equal(b.Bytes()[0x100:0x104], []byte{'S', 'E', 'G', 'A'}) {
		return "", errors.New("invalid signature")
	}

	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil)), nil
}

// crcFile computes the content CRC of a ROM image. Any copier header is a
// sub-4KB remainder on top of the power-of-two ROM size, so seeking past
// size modulo 4KB hashes the same bytes whether or not a header is
// present.
func crcFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if _, err = f.Seek(info.Size()&0xfff, os.SEEK_CUR); err != nil {
		return "", err
	}

	h := crc32.NewIEEE()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil)), nil
}

// crcFilename computes the firmware filename key for a ROM, used to
// cross-reference flash cart metadata in pipeline reports.
func crcFilename(filename string) string {
	var b [filenameTrim]byte
	copy(b[:], fmt.Sprintf("%.*s", filenameTrim, strings.ToUpper(filename)))
	return fmt.Sprintf("%.*X", crc.Size<<1, crc.Checksum(b[:]))
}
