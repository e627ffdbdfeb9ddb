// Package letters provides letter point tables for scoring.
package letters

import (
	"unicode"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Table maps an upper-case letter to its point value
type Table map[rune]int

// English is the base letter set every table starts from
var English = Table{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1, 'J': 8,
	'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3, 'Q': 10, 'R': 1, 'S': 1, 'T': 1,
	'U': 1, 'V': 4, 'W': 4, 'X': 8, 'Y': 4, 'Z': 10,
}

// Value returns the points a tile contributes before multipliers.
// Blanks are always worth zero.
func (t Table) Value(tile model.Tile) int {
	if tile.IsBlank {
		return 0
	}
	return t[unicode.ToUpper(tile.Letter)]
}

// Has reports whether the letter can be played with this table
func (t Table) Has(letter rune) bool {
	_, ok := t[unicode.ToUpper(letter)]
	return ok
}

// Merge returns a new table with other's values layered over t
func (t Table) Merge(other Table) Table {
	merged := make(Table, len(t)+len(other))
	for r, v := range t {
		merged[r] = v
	}
	for r, v := range other {
		merged[unicode.ToUpper(r)] = v
	}
	return merged
}

// Clone returns a copy of the table
func (t Table) Clone() Table {
	return t.Merge(nil)
}
