/*
Package header parses the Mega Drive cartridge header.

The header starts at 0x100 with a 16 byte console name, followed by the
game titles, the internal checksum at 0x18E and the region codes at 0x1F0.
Interleaved dump containers (.smd and .md) are also handled here as pure
byte permutations.
*/
package header

import (
	"bytes"
	"errors"
	"strings"
)

const (
	// Offset is the standard header location.
	Offset = 0x100

	// minSize is the smallest buffer that can hold a complete header.
	minSize = 0x200

	nameStart = 0x120
	nameEnd   = 0x150

	regionStart = 0x1f0
	regionEnd   = 0x1f3

	checksumOffset = 0x18e
	checksumStart  = 0x200

	smdHeader = 512
	smdBlock  = 16384
)

// The two console name signatures a valid cartridge carries.
var signatures = [][]byte{
	[]byte("SEGA MEGA DRIVE "),
	[]byte("SEGA GENESIS    "),
}

// regionCodes maps header region characters to names, checked in this
// order.
var regionCodes = []struct {
	code byte
	name string
}{
	{'U', "USA"},
	{'J', "JAPAN"},
	{'E', "EUROPE"},
	{'W', "WORLDWIDE"},
}

// ErrTooSmall is returned when a buffer cannot hold a complete header.
var ErrTooSmall = errors.New("header: ROM smaller than 0x200 bytes")

// Format identifies an interleaved dump container.
type Format int

const (
	// FormatMD is a whole-buffer odd/even byte swap.
	FormatMD Format = iota
	// FormatSMD is the Super Magic Drive container: an optional 512 byte
	// header followed by 16KB blocks with odd bytes in the first half and
	// even bytes in the second.
	FormatSMD
)

// Info summarises a cartridge header.
type Info struct {
	GameName    string
	Region      string
	Size        int
	HeaderValid bool
}

// Checksum is the result of validating the internal cartridge checksum.
type Checksum struct {
	Valid      bool
	Stored     uint16
	Calculated uint16
}

func hasSignature(b []byte) bool {
	for _, sig := range signatures {
		if bytes.Equal(b, sig) {
			return true
		}
	}
	return false
}

// Parse extracts the header fields from a ROM image. Buffers too small to
// hold a header yield an all-UNKNOWN result rather than an error.
func Parse(data []byte) Info {
	if len(data) < minSize {
		return Info{GameName: "UNKNOWN", Region: "UNKNOWN"}
	}

	info := Info{
		Region:      "UNKNOWN",
		Size:        len(data),
		HeaderValid: hasSignature(data[Offset : Offset+16]),
	}

	name := make([]byte, 0, nameEnd-nameStart)
	for _, b := range data[nameStart:nameEnd] {
		if b < 0x80 {
			name = append(name, b)
		}
	}
	info.GameName = strings.Join(strings.Fields(strings.Trim(string(name), "\x00 ")), " ")

	region := data[regionStart:regionEnd]
	for _, rc := range regionCodes {
		if bytes.IndexByte(region, rc.code) != -1 {
			info.Region = rc.name
			break
		}
	}

	return info
}

// FindOffset locates the console name signature, checking the standard
// location first and then searching the whole buffer.
func FindOffset(data []byte) (int, bool) {
	if len(data) >= minSize && hasSignature(data[Offset:Offset+16]) {
		return Offset, true
	}
	for _, sig := range signatures {
		if i := bytes.Index(data, sig); i != -1 {
			return i, true
		}
	}
	return 0, false
}

// ValidateChecksum compares the stored internal checksum against the sum
// of all bytes from 0x200 to the end of the buffer, modulo 65536.
func ValidateChecksum(data []byte) (Checksum, error) {
	if len(data) < minSize {
		return Checksum{}, ErrTooSmall
	}

	stored := uint16(data[checksumOffset])<<8 | uint16(data[checksumOffset+1])

	var sum uint16
	for _, b := range data[checksumStart:] {
		sum += uint16(b)
	}

	return Checksum{
		Valid:      stored == sum,
		Stored:     stored,
		Calculated: sum,
	}, nil
}

// Deinterleave converts an interleaved dump to natural byte order. Buffers
// whose length is incompatible with the scheme are returned unchanged;
// they were not actually interleaved.
func Deinterleave(data []byte, f Format) []byte {
	switch f {
	case FormatMD:
		return deinterleaveMD(data)
	case FormatSMD:
		return deinterleaveSMD(data)
	}
	return data
}

func deinterleaveMD(data []byte) []byte {
	if len(data)%2 != 0 {
		return data
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 2 {
		out[i] = data[i+1]
		out[i+1] = data[i]
	}
	return out
}

func hasSMDHeader(data []byte) bool {
	if len(data) < smdHeader {
		return false
	}
	if data[8] == 0xaa && data[9] == 0xbb {
		return true
	}
	if data[0] != 0x03 {
		return false
	}
	for _, b := range data[1:16] {
		if b != 0 {
			return false
		}
	}
	return true
}

func deinterleaveSMD(data []byte) []byte {
	if hasSMDHeader(data) {
		data = data[smdHeader:]
	}
	if len(data) == 0 || len(data)%smdBlock != 0 {
		return data
	}

	out := make([]byte, len(data))
	half := smdBlock / 2
	for block := 0; block < len(data); block += smdBlock {
		for i := 0; i < half; i++ {
			out[block+i*2+1] = data[block+i]
			out[block+i*2] = data[block+half+i]
		}
	}
	return out
}
