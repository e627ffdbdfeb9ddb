// Package placement decides whether a proposed word may be laid on the board.
package placement

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Validate checks a placement against the committed board. Rules run in
// order: bounds, letter conflicts, first move, connectivity. The returned
// error matches one of the model placement sentinels with errors.Is.
func Validate(board *model.Board, p model.Placement) error {
	if len(p.Tiles) == 0 {
		return model.ErrEmptyPlacement
	}
	if !p.Direction.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrBadDirection, p.Direction)
	}

	positions := p.Positions()
	for _, pos := range positions {
		if !board.InBounds(pos) {
			return fmt.Errorf("%w: (%d,%d)", model.ErrOutOfBounds, pos.Row, pos.Col)
		}
	}

	if conflicts := Conflicts(board, p); len(conflicts) > 0 {
		return fmt.Errorf("%w: (%d,%d)", model.ErrLetterConflict, conflicts[0].Row, conflicts[0].Col)
	}

	if board.IsEmpty() {
		if !lo.Contains(positions, board.Layout.Center()) {
			return model.ErrMustCoverCenter
		}
		return nil
	}

	if !connected(board, p, positions) {
		return model.ErrDisconnected
	}
	return nil
}

// Conflicts returns every in-bounds cell where the placement's letter differs
// from the committed tile
func Conflicts(board *model.Board, p model.Placement) []model.Position {
	var conflicts []model.Position
	for i, pos := range p.Positions() {
		existing := board.Get(pos)
		if existing != nil && !existing.Matches(p.Tiles[i]) {
			conflicts = append(conflicts, pos)
		}
	}
	return conflicts
}

// connected is true when the placement passes through a committed tile,
// touches one perpendicular to a new tile, or abuts one at either end
func connected(board *model.Board, p model.Placement, positions []model.Position) bool {
	cross := p.Direction.Perpendicular()
	for _, pos := range positions {
		if board.IsOccupied(pos) {
			return true
		}
		if board.IsOccupied(pos.Step(cross, -1)) || board.IsOccupied(pos.Step(cross, 1)) {
			return true
		}
	}

	before := p.Start.Step(p.Direction, -1)
	after := p.Start.Step(p.Direction, len(p.Tiles))
	return board.IsOccupied(before) || board.IsOccupied(after)
}

// FromPending rebuilds the placement covered by a set of staged tiles. The
// tiles must share a row or column and, together with committed tiles, fill
// the span between the first and last one. A single tile takes the hint
// direction when it is valid, otherwise it reads horizontally.
func FromPending(board *model.Board, pending []model.PlacedTile, hint model.Direction) (model.Placement, error) {
	if len(pending) == 0 {
		return model.Placement{}, model.ErrEmptyPlacement
	}

	dir, err := lineDirection(pending, hint)
	if err != nil {
		return model.Placement{}, err
	}

	sorted := append([]model.PlacedTile(nil), pending...)
	sort.Slice(sorted, func(i, j int) bool {
		return lineIndex(sorted[i].Position, dir) < lineIndex(sorted[j].Position, dir)
	})

	staged := lo.SliceToMap(sorted, func(t model.PlacedTile) (model.Position, model.Tile) {
		return t.Position, t.Tile
	})

	start := sorted[0].Position
	length := lineIndex(sorted[len(sorted)-1].Position, dir) - lineIndex(start, dir) + 1

	tiles := make([]model.Tile, 0, length)
	for i := 0; i < length; i++ {
		pos := start.Step(dir, i)
		if tile, ok := staged[pos]; ok {
			tiles = append(tiles, tile)
			continue
		}
		existing := board.Get(pos)
		if existing == nil {
			return model.Placement{}, fmt.Errorf("%w: (%d,%d)", model.ErrNotContiguous, pos.Row, pos.Col)
		}
		tiles = append(tiles, *existing)
	}

	return model.Placement{Start: start, Direction: dir, Tiles: tiles}, nil
}

func lineDirection(pending []model.PlacedTile, hint model.Direction) (model.Direction, error) {
	if len(pending) == 1 {
		if hint.IsValid() {
			return hint, nil
		}
		return model.Horizontal, nil
	}

	first := pending[0].Position
	sameRow := lo.EveryBy(pending, func(t model.PlacedTile) bool { return t.Position.Row == first.Row })
	sameCol := lo.EveryBy(pending, func(t model.PlacedTile) bool { return t.Position.Col == first.Col })
	switch {
	case sameRow:
		return model.Horizontal, nil
	case sameCol:
		return model.Vertical, nil
	default:
		return "", model.ErrNotInLine
	}
}

func lineIndex(pos model.Position, dir model.Direction) int {
	if dir == model.Vertical {
		return pos.Row
	}
	return pos.Col
}
