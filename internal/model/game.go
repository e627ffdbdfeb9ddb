package model

import "time"

// GameID uniquely identifies a live game session
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStateSetup      GameState = "setup"       // Players being added, board empty
	GameStateInProgress GameState = "in_progress" // Plays being recorded
)

// MaxPlayers is the largest table the scorekeeper tracks
const MaxPlayers = 4

// Game is a single scorekeeping session for one physical board
type Game struct {
	ID    GameID
	State GameState
	Board *Board

	// Tiles staged for the current play, not yet committed
	Pending          []PlacedTile
	PendingDirection Direction

	Players       []Player
	CurrentPlayer int // Index into Players
	PlayerSeq     int // Last issued player number
	Languages     []string
	TableKeyHash  string

	// NextSeq orders plays across all players; undo picks the highest
	NextSeq   int
	TurnCount int // Commits and passes since the game started

	CreatedAt time.Time
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewGame creates a game in setup with an empty board
func NewGame(id GameID, layout Layout, languages []string, now time.Time) *Game {
	return &Game{
		ID:        id,
		State:     GameStateSetup,
		Board:     NewBoard(layout),
		Languages: languages,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsStarted returns true once plays can be recorded
func (g *Game) IsStarted() bool {
	return g.State == GameStateInProgress
}

// Current returns the player whose turn it is, or nil
func (g *Game) Current() *Player {
	if !g.IsStarted() || g.CurrentPlayer < 0 || g.CurrentPlayer >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentPlayer]
}

// PlayerIndex returns the index of the player with the given ID, or -1
func (g *Game) PlayerIndex(id PlayerID) int {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// PendingAt returns the index of the staged tile at pos, or -1
func (g *Game) PendingAt(pos Position) int {
	for i, t := range g.Pending {
		if t.Position == pos {
			return i
		}
	}
	return -1
}

// PlayCount returns the number of plays across all players
func (g *Game) PlayCount() int {
	n := 0
	for _, p := range g.Players {
		n += len(p.Plays)
	}
	return n
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Board = g.Board.Clone()
	clone.Pending = append([]PlacedTile(nil), g.Pending...)
	clone.Languages = append([]string(nil), g.Languages...)
	if g.Players != nil {
		clone.Players = make([]Player, len(g.Players))
		for i, p := range g.Players {
			clone.Players[i] = p.Clone()
		}
	}
	return &clone
}

// ScoreBreakdown is the scored result of a placement
type ScoreBreakdown struct {
	Words      []WordScore
	BingoBonus int
	Total      int
	NewTiles   int
}

// Bingo returns true if the breakdown includes the all-tiles bonus
func (b ScoreBreakdown) Bingo() bool {
	return b.BingoBonus > 0
}

// WordScore is the points for one word of a placement
type WordScore struct {
	Word      string
	Score     int
	Start     Position
	Direction Direction
}

// Snapshot is the serializable state of a finished game
type Snapshot struct {
	GameID     GameID
	Languages  []string
	Players    []Player
	Winner     string // Empty on a tie or with no players
	TopScore   int
	TurnCount  int
	Board      []PlacedTile
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock length of the game
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
