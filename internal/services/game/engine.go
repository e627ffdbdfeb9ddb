package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/tilekeeper/internal/dependencies/clock"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/letters"
	"github.com/mcoot/tilekeeper/internal/services/placement"
	"github.com/mcoot/tilekeeper/internal/services/scoring"
)

// Engine applies turn transitions to a game in memory. Transitions that are
// structurally impossible (commit with nothing staged, undo with no plays)
// leave the game untouched and report changed == false. Only proposals that
// fail placement rules return an error.
type Engine struct {
	letters *letters.Registry
	rules   scoring.Rules
	clock   clock.Clock
}

// NewEngine creates an Engine
func NewEngine(registry *letters.Registry, rules scoring.Rules, clock clock.Clock) *Engine {
	return &Engine{
		letters: registry,
		rules:   rules,
		clock:   clock,
	}
}

// Scorer returns the scorer for the game's letter table
func (e *Engine) Scorer(g *model.Game) (*scoring.Scorer, error) {
	table, err := e.letters.Table(g.Languages...)
	if err != nil {
		return nil, err
	}
	return scoring.New(table, e.rules), nil
}

func (e *Engine) touch(g *model.Game) {
	g.UpdatedAt = e.clock.Now()
}

// Setup

// AddPlayer appends a player to the rotation. Only allowed during setup.
func (e *Engine) AddPlayer(g *model.Game, name string) (*model.Player, bool) {
	name = strings.TrimSpace(name)
	if g.State != model.GameStateSetup || len(g.Players) >= model.MaxPlayers || !e.nameAvailable(g, name, "") {
		return nil, false
	}

	g.PlayerSeq++
	g.Players = append(g.Players, model.Player{
		ID:   model.PlayerID(fmt.Sprintf("p%d", g.PlayerSeq)),
		Name: name,
	})
	e.touch(g)
	return &g.Players[len(g.Players)-1], true
}

// RemovePlayer drops a player during setup
func (e *Engine) RemovePlayer(g *model.Game, id model.PlayerID) bool {
	idx := g.PlayerIndex(id)
	if g.State != model.GameStateSetup || idx < 0 {
		return false
	}

	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if len(g.Players) == 0 {
		g.Players = nil
	}
	e.touch(g)
	return true
}

// RenamePlayer changes a player's display name
func (e *Engine) RenamePlayer(g *model.Game, id model.PlayerID, name string) bool {
	name = strings.TrimSpace(name)
	idx := g.PlayerIndex(id)
	if idx < 0 || g.Players[idx].Name == name || !e.nameAvailable(g, name, id) {
		return false
	}

	g.Players[idx].Name = name
	e.touch(g)
	return true
}

func (e *Engine) nameAvailable(g *model.Game, name string, except model.PlayerID) bool {
	if name == "" {
		return false
	}
	return !lo.ContainsBy(g.Players, func(p model.Player) bool {
		return p.ID != except && strings.EqualFold(p.Name, name)
	})
}

// ReorderPlayers sets the rotation order. ids must name every player exactly
// once. During play the turn stays with the same player.
func (e *Engine) ReorderPlayers(g *model.Game, ids []model.PlayerID) bool {
	if len(ids) != len(g.Players) || len(lo.Uniq(ids)) != len(ids) {
		return false
	}

	byID := lo.KeyBy(g.Players, func(p model.Player) model.PlayerID { return p.ID })
	reordered := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return false
		}
		reordered = append(reordered, p)
	}

	var current model.PlayerID
	if p := g.Current(); p != nil {
		current = p.ID
	}

	changed := false
	for i := range reordered {
		if reordered[i].ID != g.Players[i].ID {
			changed = true
		}
	}
	if !changed {
		return false
	}

	g.Players = reordered
	if current != "" {
		g.CurrentPlayer = g.PlayerIndex(current)
	}
	e.touch(g)
	return true
}

// Start begins recording plays with the first player in rotation
func (e *Engine) Start(g *model.Game) bool {
	if g.State != model.GameStateSetup || len(g.Players) == 0 {
		return false
	}

	now := e.clock.Now()
	g.State = model.GameStateInProgress
	g.CurrentPlayer = 0
	g.StartedAt = now
	g.UpdatedAt = now
	return true
}

// Staging

// Propose replaces the staged tiles with the new tiles of a placement. The
// placement must pass validation and add at least one tile whose letter is in
// the game's letter table; otherwise the game is unchanged.
func (e *Engine) Propose(g *model.Game, p model.Placement) (bool, error) {
	if !g.IsStarted() {
		return false, nil
	}
	if err := placement.Validate(g.Board, p); err != nil {
		return false, err
	}
	scorer, err := e.Scorer(g)
	if err != nil {
		return false, err
	}

	var staged []model.PlacedTile
	for i, pos := range p.Positions() {
		if g.Board.IsOccupied(pos) {
			continue
		}
		tile := model.NewTile(p.Tiles[i].Letter, p.Tiles[i].IsBlank)
		if !scorer.Table().Has(tile.Letter) {
			return false, fmt.Errorf("%w: %q", model.ErrInvalidLetter, tile.Letter)
		}
		staged = append(staged, model.PlacedTile{Tile: tile, Position: pos, IsNew: true})
	}
	if len(staged) == 0 {
		return false, model.ErrNoNewTiles
	}

	g.Pending = staged
	g.PendingDirection = p.Direction
	e.touch(g)
	return true, nil
}

// PlaceTile stages a single tile on an empty cell
func (e *Engine) PlaceTile(g *model.Game, pos model.Position, tile model.Tile) (bool, error) {
	if !g.IsStarted() {
		return false, nil
	}
	if !g.Board.InBounds(pos) {
		return false, fmt.Errorf("%w: (%d,%d)", model.ErrOutOfBounds, pos.Row, pos.Col)
	}
	if g.Board.IsOccupied(pos) || g.PendingAt(pos) >= 0 {
		return false, fmt.Errorf("%w: (%d,%d)", model.ErrCellOccupied, pos.Row, pos.Col)
	}
	scorer, err := e.Scorer(g)
	if err != nil {
		return false, err
	}
	tile = model.NewTile(tile.Letter, tile.IsBlank)
	if !scorer.Table().Has(tile.Letter) {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidLetter, tile.Letter)
	}

	g.Pending = append(g.Pending, model.PlacedTile{Tile: tile, Position: pos, IsNew: true})
	e.touch(g)
	return true, nil
}

// RemovePending discards the staged tile at pos
func (e *Engine) RemovePending(g *model.Game, pos model.Position) bool {
	idx := g.PendingAt(pos)
	if idx < 0 {
		return false
	}

	g.Pending = append(g.Pending[:idx], g.Pending[idx+1:]...)
	if len(g.Pending) == 0 {
		g.Pending = nil
		g.PendingDirection = ""
	}
	e.touch(g)
	return true
}

// ClearPending discards every staged tile. The turn does not move.
func (e *Engine) ClearPending(g *model.Game) bool {
	if len(g.Pending) == 0 {
		return false
	}
	clearPending(g)
	e.touch(g)
	return true
}

func clearPending(g *model.Game) {
	g.Pending = nil
	g.PendingDirection = ""
}

// Preview scores the staged tiles without committing them
func (e *Engine) Preview(g *model.Game) (model.ScoreBreakdown, error) {
	if len(g.Pending) == 0 {
		return model.ScoreBreakdown{}, nil
	}
	p, err := e.stagedPlacement(g)
	if err != nil {
		return model.ScoreBreakdown{}, err
	}
	scorer, err := e.Scorer(g)
	if err != nil {
		return model.ScoreBreakdown{}, err
	}
	return scorer.ScorePlacement(g.Board, g.Pending, p.Direction), nil
}

func (e *Engine) stagedPlacement(g *model.Game) (model.Placement, error) {
	p, err := placement.FromPending(g.Board, g.Pending, g.PendingDirection)
	if err != nil {
		return model.Placement{}, err
	}
	if err := placement.Validate(g.Board, p); err != nil {
		return model.Placement{}, err
	}
	return p, nil
}

// Turns

// Commit moves the staged tiles onto the board, records the play for the
// current player and passes the turn on. Returns nil when nothing is staged.
func (e *Engine) Commit(g *model.Game) (*model.Play, error) {
	current := g.Current()
	if current == nil || len(g.Pending) == 0 {
		return nil, nil
	}

	p, err := e.stagedPlacement(g)
	if err != nil {
		return nil, err
	}
	scorer, err := e.Scorer(g)
	if err != nil {
		return nil, err
	}
	breakdown := scorer.ScorePlacement(g.Board, g.Pending, p.Direction)

	now := e.clock.Now()
	tiles := make([]model.PlacedTile, len(g.Pending))
	for i, t := range g.Pending {
		g.Board.Set(t.Position, t.Tile)
		t.IsNew = false
		tiles[i] = t
	}

	play := model.Play{
		PlayerID: current.ID,
		Seq:      g.NextSeq,
		Words:    breakdown.Words,
		Score:    breakdown.Total,
		Bingo:    breakdown.Bingo(),
		Tiles:    tiles,
		PlayedAt: now,
	}
	g.NextSeq++
	current.Score += play.Score
	current.Plays = append(current.Plays, play)

	clearPending(g)
	g.CurrentPlayer = (g.CurrentPlayer + 1) % len(g.Players)
	g.TurnCount++
	g.UpdatedAt = now

	committed := play.Clone()
	return &committed, nil
}

// Pass moves the turn on without a play. Needs at least two players.
func (e *Engine) Pass(g *model.Game) bool {
	if g.Current() == nil || len(g.Players) < 2 {
		return false
	}

	clearPending(g)
	g.CurrentPlayer = (g.CurrentPlayer + 1) % len(g.Players)
	g.TurnCount++
	e.touch(g)
	return true
}

// Undo takes back the most recent play at the table, whoever made it, and
// returns the turn to its owner. Returns nil when there is nothing to undo.
func (e *Engine) Undo(g *model.Game) *model.Play {
	owner := -1
	for i := range g.Players {
		last := g.Players[i].LastPlay()
		if last == nil {
			continue
		}
		if owner < 0 || last.Seq > g.Players[owner].LastPlay().Seq {
			owner = i
		}
	}
	if owner < 0 {
		return nil
	}

	player := &g.Players[owner]
	play := *player.LastPlay()
	for _, t := range play.Tiles {
		g.Board.Clear(t.Position)
	}
	player.Score -= play.Score
	player.Plays = player.Plays[:len(player.Plays)-1]
	if len(player.Plays) == 0 {
		player.Plays = nil
	}

	clearPending(g)
	g.CurrentPlayer = owner
	g.NextSeq = play.Seq
	if g.TurnCount > 0 {
		g.TurnCount--
	}
	e.touch(g)

	undone := play.Clone()
	return &undone
}

// SetCurrentPlayer hands the turn to a specific player
func (e *Engine) SetCurrentPlayer(g *model.Game, id model.PlayerID) bool {
	idx := g.PlayerIndex(id)
	if !g.IsStarted() || idx < 0 || idx == g.CurrentPlayer {
		return false
	}

	g.CurrentPlayer = idx
	e.touch(g)
	return true
}

// SetScore overrides a player's total, for correcting mistakes at the table
func (e *Engine) SetScore(g *model.Game, id model.PlayerID, score int) bool {
	idx := g.PlayerIndex(id)
	if idx < 0 || score < 0 || g.Players[idx].Score == score {
		return false
	}

	g.Players[idx].Score = score
	e.touch(g)
	return true
}

// Resets

// Reset starts a fresh board with the same players. Scores and play history
// are cleared and, when there are players, play starts again immediately.
func (e *Engine) Reset(g *model.Game) bool {
	now := e.clock.Now()
	for i := range g.Players {
		g.Players[i].Score = 0
		g.Players[i].Plays = nil
	}
	e.clearBoard(g)

	g.State = model.GameStateSetup
	g.StartedAt = time.Time{}
	if len(g.Players) > 0 {
		g.State = model.GameStateInProgress
		g.StartedAt = now
	}
	g.UpdatedAt = now
	return true
}

// FullReset clears the board and removes every player
func (e *Engine) FullReset(g *model.Game) bool {
	e.clearBoard(g)
	g.Players = nil
	g.PlayerSeq = 0
	g.State = model.GameStateSetup
	g.StartedAt = time.Time{}
	e.touch(g)
	return true
}

func (e *Engine) clearBoard(g *model.Game) {
	g.Board = model.NewBoard(g.Board.Layout)
	clearPending(g)
	g.CurrentPlayer = 0
	g.NextSeq = 0
	g.TurnCount = 0
}

// Snapshot captures the game for the archive. Winner is left empty on a tie
// for the top score.
func (e *Engine) Snapshot(g *model.Game) model.Snapshot {
	snap := model.Snapshot{
		GameID:     g.ID,
		Languages:  append([]string(nil), g.Languages...),
		Players:    g.Clone().Players,
		TurnCount:  g.TurnCount,
		Board:      g.Board.Tiles(),
		StartedAt:  g.StartedAt,
		FinishedAt: e.clock.Now(),
	}
	if len(g.Players) == 0 {
		return snap
	}

	top := lo.MaxBy(g.Players, func(a, b model.Player) bool { return a.Score > b.Score })
	snap.TopScore = top.Score
	leaders := lo.Filter(g.Players, func(p model.Player, _ int) bool { return p.Score == top.Score })
	if len(leaders) == 1 {
		snap.Winner = top.Name
	}
	return snap
}
