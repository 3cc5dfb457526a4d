/*
Package scan implements heuristic region discovery over raw ROM images.

Nothing in a cartridge dump points at its graphics or tables, so the only
way to find them is to slide a fixed size window across the buffer and keep
the windows that look plausible. The predicates here are deliberately crude
and shared by every caller so that "looks like graphics" means the same
thing everywhere.
*/
package scan

// Predicate reports whether a window of bytes looks like the target
// format.
type Predicate func([]byte) bool

// Region is a matching window and the offset it was found at.
type Region struct {
	Offset int
	Data   []byte
}

// Window sizes and result caps for the stock scans.
const (
	GraphicsWindow = 32
	TilemapWindow  = 128
	SpriteWindow   = 64

	MaxGraphics = 1000
	MaxTilemaps = 100
	MaxSprites  = 200
)

// Scan slides a non-overlapping window of the given size across data and
// collects every window pred accepts, in increasing offset order, stopping
// once max regions have been found. A max of zero or less means unlimited.
// The returned Data slices alias data; callers must copy before mutating.
func Scan(data []byte, window int, pred Predicate, max int) []Region {
	var regions []Region
	if window <= 0 {
		return regions
	}
	for i := 0; i+window <= len(data); i += window {
		if max > 0 && len(regions) >= max {
			break
		}
		w := data[i : i+window]
		if pred(w) {
			regions = append(regions, Region{Offset: i, Data: w})
		}
	}
	return regions
}

// NonZeroRange returns a predicate accepting windows whose non-zero byte
// count lies in [lo, hi]. All-zero regions are padding; near-saturated
// regions are usually compressed data or noise.
func NonZeroRange(lo, hi int) Predicate {
	return func(b []byte) bool {
		n := 0
		for _, v := range b {
			if v != 0 {
				n++
			}
		}
		return n >= lo && n <= hi
	}
}

// WordsBelow returns a predicate accepting windows where more than min of
// the big-endian 16-bit entries are below limit.
func WordsBelow(limit uint16, min int) Predicate {
	return func(b []byte) bool {
		n := 0
		for i := 0; i+1 < len(b); i += 2 {
			if uint16(b[i])<<8|uint16(b[i+1]) < limit {
				n++
			}
		}
		return n > min
	}
}

// Graphics accepts 32 byte windows with the variation typical of 4-bit
// planar tile data.
var Graphics = NonZeroRange(8, 28)

// Tilemap accepts 128 byte windows where most entries parse as plausible
// nametable words.
var Tilemap = WordsBelow(0xffff, 32)

// Sprite accepts 64 byte windows with the density typical of sprite
// attribute tables.
var Sprite = NonZeroRange(16, 48)
