// Package words derives the words a placement forms on the board.
package words

import (
	"sort"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Result holds the words formed by a set of staged tiles
type Result struct {
	Main  *model.Word  // nil when the run along the placement is a single tile
	Cross []model.Word // one per distinct perpendicular run of length >= 2
}

// Words returns the main word (if any) followed by the cross words
func (r Result) Words() []model.Word {
	words := make([]model.Word, 0, len(r.Cross)+1)
	if r.Main != nil {
		words = append(words, *r.Main)
	}
	return append(words, r.Cross...)
}

// Extract finds the main word along dir and every perpendicular word opened
// by a staged tile. Committed tiles before, between and after the staged
// tiles are included with IsNew false. The staged tiles are assumed to have
// passed placement validation. An invalid dir is inferred from the tiles.
func Extract(board *model.Board, pending []model.PlacedTile, dir model.Direction) Result {
	if len(pending) == 0 {
		return Result{}
	}
	if !dir.IsValid() {
		dir = InferDirection(pending)
	}

	staged := make(map[model.Position]model.PlacedTile, len(pending))
	for _, t := range pending {
		t.IsNew = true
		staged[t.Position] = t
	}
	lookup := func(pos model.Position) (model.PlacedTile, bool) {
		if t, ok := staged[pos]; ok {
			return t, true
		}
		if tile := board.Get(pos); tile != nil {
			return model.PlacedTile{Tile: *tile, Position: pos}, true
		}
		return model.PlacedTile{}, false
	}

	sorted := append([]model.PlacedTile(nil), pending...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Position, sorted[j].Position
		if dir == model.Vertical {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})

	var result Result
	if main := run(lookup, sorted[0].Position, dir); main.Len() >= 2 {
		result.Main = &main
	}

	seen := make(map[string]bool)
	for _, t := range sorted {
		cross := run(lookup, t.Position, dir.Perpendicular())
		if cross.Len() < 2 {
			continue
		}
		key := cross.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Cross = append(result.Cross, cross)
	}

	return result
}

// InferDirection picks the direction shared by the staged tiles. A single
// tile, or tiles that share a row, read horizontally.
func InferDirection(pending []model.PlacedTile) model.Direction {
	if len(pending) < 2 {
		return model.Horizontal
	}
	for _, t := range pending[1:] {
		if t.Position.Row != pending[0].Position.Row {
			return model.Vertical
		}
	}
	return model.Horizontal
}

// run walks back from anchor to the start of the contiguous run along dir,
// then forward to its end
func run(lookup func(model.Position) (model.PlacedTile, bool), anchor model.Position, dir model.Direction) model.Word {
	start := anchor
	for {
		prev := start.Step(dir, -1)
		if _, ok := lookup(prev); !ok {
			break
		}
		start = prev
	}

	word := model.Word{Direction: dir}
	for pos := start; ; pos = pos.Step(dir, 1) {
		t, ok := lookup(pos)
		if !ok {
			break
		}
		word.Tiles = append(word.Tiles, t)
	}
	return word
}
