/*
Package crc32 implements the CRC-32 variant used by flash cartridge
firmware to key game metadata by filename.

It uses the standard normal polynomial but without bit reflection and
processes input in 32-bit little-endian word order, matching how the
firmware reads its buffers. The result therefore differs from both
hash/crc32 tables for the same input.
*/
package crc32

import crc "hash/crc32"

// Size of a CRC-32 checksum in bytes.
const Size = crc.Size

const polynomial = 0x04c11db7

var table = makeTable(polynomial)

func makeTable(poly uint32) *crc.Table {
	t := new(crc.Table)
	for i := 0; i < 256; i++ {
		c := uint32(i << 24)
		for j := 0; j < 8; j++ {
			if c&0x80000000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
			t[i] = c
		}
	}
	return t
}

// Update returns the result of adding the bytes in p to the crc. Input
// whose length is not a multiple of four reads past bytes within the same
// word, so callers should pad p accordingly.
func Update(c uint32, p []byte) uint32 {
	for i := range p {
		c = c<<8 ^ table[((c>>24)^uint32(p[i^3]))&0xff]
	}
	return c
}

// Checksum returns the CRC-32 checksum of data, starting from the
// firmware's initial value.
func Checksum(data []byte) uint32 {
	return Update(0xffffffff, data)
}
