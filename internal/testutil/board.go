package testutil

import (
	"github.com/mcoot/tilekeeper/internal/model"
)

// MustTiles parses tile notation and panics on bad input
func MustTiles(word string) []model.Tile {
	tiles, err := model.ParseTiles(word)
	if err != nil {
		panic(err)
	}
	return tiles
}

// CommitWord writes a word onto the board as committed tiles, overwriting
// whatever is there
func CommitWord(board *model.Board, row, col int, dir model.Direction, word string) {
	start := model.Position{Row: row, Col: col}
	for i, t := range MustTiles(word) {
		board.Set(start.Step(dir, i), t)
	}
}

// Stage returns the staged tiles for a word laid from (row, col), skipping
// cells that already hold a committed tile
func Stage(board *model.Board, row, col int, dir model.Direction, word string) []model.PlacedTile {
	start := model.Position{Row: row, Col: col}
	var pending []model.PlacedTile
	for i, t := range MustTiles(word) {
		pos := start.Step(dir, i)
		if board.IsOccupied(pos) {
			continue
		}
		pending = append(pending, model.PlacedTile{Tile: t, Position: pos, IsNew: true})
	}
	return pending
}

// Placement builds a placement request from tile notation
func Placement(row, col int, dir model.Direction, word string) model.Placement {
	return model.Placement{
		Start:     model.Position{Row: row, Col: col},
		Direction: dir,
		Tiles:     MustTiles(word),
	}
}
