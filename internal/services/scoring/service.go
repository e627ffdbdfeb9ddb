package scoring

import (
	"github.com/samber/lo"

	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/letters"
	"github.com/mcoot/tilekeeper/internal/services/words"
)

// Rules holds the rule-set constants that affect scoring
type Rules struct {
	// RackSize is the number of tiles a player holds; placing all of them
	// in one play earns BingoBonus
	RackSize   int
	BingoBonus int
}

// DefaultRules returns the standard rule set
func DefaultRules() Rules {
	return Rules{
		RackSize:   7,
		BingoBonus: 50,
	}
}

// Scorer computes word and placement scores for one letter table
type Scorer struct {
	table letters.Table
	rules Rules
}

// New creates a Scorer
func New(table letters.Table, rules Rules) *Scorer {
	return &Scorer{
		table: table,
		rules: rules,
	}
}

// Table returns the letter table the scorer uses
func (s *Scorer) Table() letters.Table {
	return s.table
}

// ScoreWord scores a single word. Premiums apply only to tiles with IsNew
// set; committed tiles count their plain letter value.
func (s *Scorer) ScoreWord(board *model.Board, word model.Word) int {
	letterSum := 0
	wordMultiplier := 1

	for _, t := range word.Tiles {
		value := s.table.Value(t.Tile)
		if !t.IsNew {
			letterSum += value
			continue
		}
		premium := board.Premium(t.Position)
		letterSum += value * premium.LetterMultiplier()
		wordMultiplier *= premium.WordMultiplier()
	}

	return letterSum * wordMultiplier
}

// ScorePlacement scores every word formed by the staged tiles and adds the
// bingo bonus when exactly RackSize tiles are new
func (s *Scorer) ScorePlacement(board *model.Board, pending []model.PlacedTile, dir model.Direction) model.ScoreBreakdown {
	formed := words.Extract(board, pending, dir).Words()

	breakdown := model.ScoreBreakdown{
		Words: lo.Map(formed, func(w model.Word, _ int) model.WordScore {
			return model.WordScore{
				Word:      w.String(),
				Score:     s.ScoreWord(board, w),
				Start:     w.Start(),
				Direction: w.Direction,
			}
		}),
		NewTiles: len(pending),
	}

	breakdown.Total = lo.SumBy(breakdown.Words, func(w model.WordScore) int { return w.Score })
	if s.rules.RackSize > 0 && len(pending) == s.rules.RackSize {
		breakdown.BingoBonus = s.rules.BingoBonus
		breakdown.Total += s.rules.BingoBonus
	}

	return breakdown
}
