package model

import (
	"strconv"
	"strings"
	"unicode"
)

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Step returns the position n cells away in the given direction
func (p Position) Step(dir Direction, n int) Position {
	if dir == Vertical {
		return Position{Row: p.Row + n, Col: p.Col}
	}
	return Position{Row: p.Row, Col: p.Col + n}
}

// Direction is the reading direction of a word
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// IsValid reports whether d is one of the two reading directions
func (d Direction) IsValid() bool {
	return d == Horizontal || d == Vertical
}

// Perpendicular returns the crossing direction
func (d Direction) Perpendicular() Direction {
	if d == Vertical {
		return Horizontal
	}
	return Vertical
}

// Tile is a single letter tile. A blank stands in for Letter but scores nothing.
type Tile struct {
	Letter  rune
	IsBlank bool
}

// NewTile returns a tile with the letter normalised to upper case
func NewTile(letter rune, blank bool) Tile {
	return Tile{Letter: unicode.ToUpper(letter), IsBlank: blank}
}

// Matches compares letter identity, ignoring case and blank-ness
func (t Tile) Matches(other Tile) bool {
	return unicode.ToUpper(t.Letter) == unicode.ToUpper(other.Letter)
}

// PlacedTile is a tile at a board position
type PlacedTile struct {
	Tile
	Position Position
	IsNew    bool // staged this turn, not yet committed
}

// Board holds committed tiles over a fixed premium layout
type Board struct {
	Layout Layout
	Cells  [][]*Tile // Row-major: Cells[row][col], nil means empty
}

// NewBoard creates an empty board over the given layout
func NewBoard(layout Layout) *Board {
	size := layout.Size()
	cells := make([][]*Tile, size)
	for i := range cells {
		cells[i] = make([]*Tile, size)
	}
	return &Board{
		Layout: layout,
		Cells:  cells,
	}
}

// Size returns the grid dimension
func (b *Board) Size() int {
	return len(b.Cells)
}

// InBounds returns true if the position is within the grid
func (b *Board) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size() && pos.Col >= 0 && pos.Col < b.Size()
}

// Get returns the committed tile at the given position, or nil
func (b *Board) Get(pos Position) *Tile {
	if !b.InBounds(pos) {
		return nil
	}
	return b.Cells[pos.Row][pos.Col]
}

// IsOccupied returns true if a committed tile sits at pos
func (b *Board) IsOccupied(pos Position) bool {
	return b.Get(pos) != nil
}

// Set commits a tile at the given position
func (b *Board) Set(pos Position, tile Tile) {
	if b.InBounds(pos) {
		t := tile
		b.Cells[pos.Row][pos.Col] = &t
	}
}

// Clear removes the tile at the given position
func (b *Board) Clear(pos Position) {
	if b.InBounds(pos) {
		b.Cells[pos.Row][pos.Col] = nil
	}
}

// Premium returns the premium marking of a cell
func (b *Board) Premium(pos Position) Premium {
	return b.Layout.Premium(pos)
}

// IsEmpty returns true if no tile has been committed
func (b *Board) IsEmpty() bool {
	return b.TileCount() == 0
}

// TileCount returns the number of committed tiles
func (b *Board) TileCount() int {
	count := 0
	for _, row := range b.Cells {
		for _, cell := range row {
			if cell != nil {
				count++
			}
		}
	}
	return count
}

// Tiles returns every committed tile in row-major order
func (b *Board) Tiles() []PlacedTile {
	var tiles []PlacedTile
	for row, cells := range b.Cells {
		for col, cell := range cells {
			if cell != nil {
				tiles = append(tiles, PlacedTile{Tile: *cell, Position: Position{Row: row, Col: col}})
			}
		}
	}
	return tiles
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	clone := NewBoard(b.Layout)
	for row, cells := range b.Cells {
		for col, cell := range cells {
			if cell != nil && row < len(clone.Cells) && col < len(clone.Cells[row]) {
				t := *cell
				clone.Cells[row][col] = &t
			}
		}
	}
	return clone
}

// Placement is a proposed word: the full run of letters from Start, including
// any letters already on the board that it passes through
type Placement struct {
	Start     Position
	Direction Direction
	Tiles     []Tile
}

// Positions returns the cell covered by each tile of the placement
func (p Placement) Positions() []Position {
	positions := make([]Position, len(p.Tiles))
	for i := range p.Tiles {
		positions[i] = p.Start.Step(p.Direction, i)
	}
	return positions
}

// Word is a contiguous run of tiles read start to end
type Word struct {
	Tiles     []PlacedTile
	Direction Direction
}

// Len returns the number of tiles in the word
func (w Word) Len() int {
	return len(w.Tiles)
}

// Start returns the position of the first tile
func (w Word) Start() Position {
	if len(w.Tiles) == 0 {
		return Position{}
	}
	return w.Tiles[0].Position
}

// String returns the letters of the word
func (w Word) String() string {
	var sb strings.Builder
	for _, t := range w.Tiles {
		sb.WriteRune(t.Letter)
	}
	return sb.String()
}

// Key identifies a word by the cells it covers
func (w Word) Key() string {
	var sb strings.Builder
	sb.WriteString(string(w.Direction))
	for _, t := range w.Tiles {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(t.Position.Row))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(t.Position.Col))
	}
	return sb.String()
}

// NewTileCount returns how many tiles in the word are staged this turn
func (w Word) NewTileCount() int {
	n := 0
	for _, t := range w.Tiles {
		if t.IsNew {
			n++
		}
	}
	return n
}
