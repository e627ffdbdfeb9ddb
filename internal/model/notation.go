package model

import (
	"fmt"
	"strings"
	"unicode"
)

// BlankMarker follows a letter in tile notation to mark it as a blank
const BlankMarker = '?'

// ParseTiles reads tile notation: letters in order, each optionally followed
// by BlankMarker. "CA?T" is C, blank A, T.
func ParseTiles(s string) ([]Tile, error) {
	var tiles []Tile
	for _, r := range s {
		if r == BlankMarker {
			if len(tiles) == 0 || tiles[len(tiles)-1].IsBlank {
				return nil, fmt.Errorf("%w: %q", ErrInvalidLetter, s)
			}
			tiles[len(tiles)-1].IsBlank = true
			continue
		}
		if !unicode.IsLetter(r) {
			return nil, fmt.Errorf("%w: %q in %q", ErrInvalidLetter, r, s)
		}
		tiles = append(tiles, NewTile(r, false))
	}
	return tiles, nil
}

// FormatTiles writes tiles back in tile notation
func FormatTiles(tiles []Tile) string {
	var sb strings.Builder
	for _, t := range tiles {
		sb.WriteRune(t.Letter)
		if t.IsBlank {
			sb.WriteRune(BlankMarker)
		}
	}
	return sb.String()
}
