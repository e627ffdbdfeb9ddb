package model

import "fmt"

// Premium is the scoring marking of a board cell
type Premium int

const (
	PremiumNone Premium = iota
	PremiumDoubleLetter
	PremiumTripleLetter
	PremiumDoubleWord
	PremiumTripleWord
	PremiumCenter
)

var premiumNames = map[Premium]string{
	PremiumNone:         "none",
	PremiumDoubleLetter: "double_letter",
	PremiumTripleLetter: "triple_letter",
	PremiumDoubleWord:   "double_word",
	PremiumTripleWord:   "triple_word",
	PremiumCenter:       "center",
}

// String returns the wire name of the premium
func (p Premium) String() string {
	if name, ok := premiumNames[p]; ok {
		return name
	}
	return "none"
}

// LetterMultiplier is applied to a new tile's letter value
func (p Premium) LetterMultiplier() int {
	switch p {
	case PremiumDoubleLetter:
		return 2
	case PremiumTripleLetter:
		return 3
	default:
		return 1
	}
}

// WordMultiplier is applied to a word containing a new tile on this cell
func (p Premium) WordMultiplier() int {
	switch p {
	case PremiumDoubleWord, PremiumCenter:
		return 2
	case PremiumTripleWord:
		return 3
	default:
		return 1
	}
}

// Layout markers, one rune per cell
const (
	markerNone         = ' '
	markerDoubleLetter = '\''
	markerTripleLetter = '"'
	markerDoubleWord   = '-'
	markerTripleWord   = '='
	markerCenter       = '*'
)

// Layout is the premium-square layout of a board: one string per row, one
// marker per cell
type Layout []string

// StandardLayout is the 15x15 board layout
var StandardLayout = Layout{
	`=  '   =   '  =`,
	` -   "   "   - `,
	`  -   ' '   -  `,
	`'  -   '   -  '`,
	`    -     -    `,
	` "   "   "   " `,
	`  '   ' '   '  `,
	`=  '   *   '  =`,
	`  '   ' '   '  `,
	` "   "   "   " `,
	`    -     -    `,
	`'  -   '   -  '`,
	`  -   ' '   -  `,
	` -   "   "   - `,
	`=  '   =   '  =`,
}

// Size returns the grid dimension
func (l Layout) Size() int {
	return len(l)
}

// Premium returns the marking at pos, or PremiumNone outside the layout
func (l Layout) Premium(pos Position) Premium {
	if pos.Row < 0 || pos.Row >= len(l) {
		return PremiumNone
	}
	row := []rune(l[pos.Row])
	if pos.Col < 0 || pos.Col >= len(row) {
		return PremiumNone
	}
	switch row[pos.Col] {
	case markerDoubleLetter:
		return PremiumDoubleLetter
	case markerTripleLetter:
		return PremiumTripleLetter
	case markerDoubleWord:
		return PremiumDoubleWord
	case markerTripleWord:
		return PremiumTripleWord
	case markerCenter:
		return PremiumCenter
	default:
		return PremiumNone
	}
}

// Center returns the designated center cell: the center marker if present,
// otherwise the middle of the grid
func (l Layout) Center() Position {
	for r, row := range l {
		for c, m := range []rune(row) {
			if m == markerCenter {
				return Position{Row: r, Col: c}
			}
		}
	}
	mid := len(l) / 2
	return Position{Row: mid, Col: mid}
}

// Validate checks the layout is square and uses known markers
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}
	centers := 0
	for r, row := range l {
		cells := []rune(row)
		if len(cells) != len(l) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, r, len(cells), len(l))
		}
		for c, m := range cells {
			switch m {
			case markerNone, markerDoubleLetter, markerTripleLetter, markerDoubleWord, markerTripleWord:
			case markerCenter:
				centers++
			default:
				return fmt.Errorf("%w: unknown marker %q at (%d,%d)", ErrInvalidLayout, m, r, c)
			}
		}
	}
	if centers > 1 {
		return fmt.Errorf("%w: %d center cells", ErrInvalidLayout, centers)
	}
	return nil
}
