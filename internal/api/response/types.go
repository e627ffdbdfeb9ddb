package response

import (
	"time"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Position is a board cell
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PositionFromModel converts model.Position
func PositionFromModel(p model.Position) Position {
	return Position{Row: p.Row, Col: p.Col}
}

// Tile is a letter at a board position
type Tile struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter"`
	Blank  bool   `json:"blank,omitempty"`
}

// TilesFromModel converts placed tiles
func TilesFromModel(tiles []model.PlacedTile) []Tile {
	out := make([]Tile, len(tiles))
	for i, t := range tiles {
		out[i] = Tile{
			Row:    t.Position.Row,
			Col:    t.Position.Col,
			Letter: string(t.Letter),
			Blank:  t.IsBlank,
		}
	}
	return out
}

// Layout is the premium layout of a board
type Layout struct {
	Size   int      `json:"size"`
	Rows   []string `json:"rows"`
	Center Position `json:"center"`
}

// LayoutFromModel converts model.Layout
func LayoutFromModel(l model.Layout) Layout {
	return Layout{
		Size:   l.Size(),
		Rows:   append([]string(nil), l...),
		Center: PositionFromModel(l.Center()),
	}
}

// Board is the committed tiles over a layout
type Board struct {
	Layout Layout `json:"layout"`
	Tiles  []Tile `json:"tiles"`
}

// BoardFromModel converts model.Board
func BoardFromModel(b *model.Board) Board {
	return Board{
		Layout: LayoutFromModel(b.Layout),
		Tiles:  TilesFromModel(b.Tiles()),
	}
}

// WordScore is one scored word. Valid is only set when a dictionary is
// loaded and never affects the score.
type WordScore struct {
	Word      string   `json:"word"`
	Score     int      `json:"score"`
	Start     Position `json:"start"`
	Direction string   `json:"direction"`
	Valid     *bool    `json:"valid,omitempty"`
}

// WordScoresFromModel converts scored words, attaching dictionary results
// when there are any
func WordScoresFromModel(words []model.WordScore, valid map[string]bool) []WordScore {
	out := make([]WordScore, len(words))
	for i, w := range words {
		out[i] = WordScore{
			Word:      w.Word,
			Score:     w.Score,
			Start:     PositionFromModel(w.Start),
			Direction: string(w.Direction),
		}
		if v, ok := valid[w.Word]; ok {
			out[i].Valid = &v
		}
	}
	return out
}

// Play is a committed placement
type Play struct {
	Seq      int         `json:"seq"`
	PlayerID string      `json:"player_id"`
	Words    []WordScore `json:"words"`
	Score    int         `json:"score"`
	Bingo    bool        `json:"bingo,omitempty"`
	Tiles    []Tile      `json:"tiles"`
	PlayedAt time.Time   `json:"played_at"`
}

// PlayFromModel converts model.Play
func PlayFromModel(p model.Play) Play {
	return Play{
		Seq:      p.Seq,
		PlayerID: string(p.PlayerID),
		Words:    WordScoresFromModel(p.Words, nil),
		Score:    p.Score,
		Bingo:    p.Bingo,
		Tiles:    TilesFromModel(p.Tiles),
		PlayedAt: p.PlayedAt,
	}
}

// Player is a seat at the table with its play history
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Plays []Play `json:"plays"`
}

// PlayerFromModel converts model.Player
func PlayerFromModel(p model.Player) Player {
	plays := make([]Play, len(p.Plays))
	for i, play := range p.Plays {
		plays[i] = PlayFromModel(play)
	}
	return Player{
		ID:    string(p.ID),
		Name:  p.Name,
		Score: p.Score,
		Plays: plays,
	}
}

func playersFromModel(players []model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// Game is the full state of a live game. The table key hash is never sent.
type Game struct {
	ID               string     `json:"id"`
	State            string     `json:"state"`
	Languages        []string   `json:"languages"`
	Players          []Player   `json:"players"`
	CurrentPlayer    *string    `json:"current_player"`
	Board            Board      `json:"board"`
	Pending          []Tile     `json:"pending"`
	PendingDirection string     `json:"pending_direction,omitempty"`
	TurnCount        int        `json:"turn_count"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	var current *string
	if p := g.Current(); p != nil {
		id := string(p.ID)
		current = &id
	}

	var started *time.Time
	if !g.StartedAt.IsZero() {
		t := g.StartedAt
		started = &t
	}

	languages := g.Languages
	if languages == nil {
		languages = []string{}
	}

	return Game{
		ID:               string(g.ID),
		State:            string(g.State),
		Languages:        languages,
		Players:          playersFromModel(g.Players),
		CurrentPlayer:    current,
		Board:            BoardFromModel(g.Board),
		Pending:          TilesFromModel(g.Pending),
		PendingDirection: string(g.PendingDirection),
		TurnCount:        g.TurnCount,
		CreatedAt:        g.CreatedAt,
		StartedAt:        started,
		UpdatedAt:        g.UpdatedAt,
	}
}

// GameSummary is a live game in a listing
type GameSummary struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Languages []string  `json:"languages"`
	Players   []string  `json:"players"`
	TurnCount int       `json:"turn_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameSummaryFromModel converts model.Game to a listing entry
func GameSummaryFromModel(g *model.Game) GameSummary {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	languages := g.Languages
	if languages == nil {
		languages = []string{}
	}
	return GameSummary{
		ID:        string(g.ID),
		State:     string(g.State),
		Languages: languages,
		Players:   names,
		TurnCount: g.TurnCount,
		UpdatedAt: g.UpdatedAt,
	}
}

// GameList is the response for listing games
type GameList struct {
	Games []GameSummary `json:"games"`
}

// CreatedGame is returned once, when a game is created. The table key is
// not retrievable afterwards.
type CreatedGame struct {
	Game     Game   `json:"game"`
	TableKey string `json:"table_key"`
}

// Mutation is the response to any change request. Changed is false when the
// request was valid but had nothing to do.
type Mutation struct {
	Changed   bool  `json:"changed"`
	Game      Game  `json:"game"`
	Play      *Play `json:"play,omitempty"`
	ArchiveID int64 `json:"archive_id,omitempty"`
}

// Preview is the score the staged tiles would make
type Preview struct {
	Words      []WordScore `json:"words"`
	BingoBonus int         `json:"bingo_bonus"`
	Total      int         `json:"total"`
	NewTiles   int         `json:"new_tiles"`
	Pending    []Tile      `json:"pending"`
}

// PreviewFromModel converts a score breakdown
func PreviewFromModel(g *model.Game, b model.ScoreBreakdown, valid map[string]bool) Preview {
	return Preview{
		Words:      WordScoresFromModel(b.Words, valid),
		BingoBonus: b.BingoBonus,
		Total:      b.Total,
		NewTiles:   b.NewTiles,
		Pending:    TilesFromModel(g.Pending),
	}
}

// WordCheck is an advisory dictionary lookup
type WordCheck struct {
	Word             string `json:"word"`
	Valid            bool   `json:"valid"`
	DictionaryLoaded bool   `json:"dictionary_loaded"`
}

// Letters is a merged letter value table
type Letters struct {
	Languages []string       `json:"languages"`
	Available []string       `json:"available"`
	Values    map[string]int `json:"values"`
}

// ArchivedGame is a finished game from the archive
type ArchivedGame struct {
	ID              int64     `json:"id"`
	GameID          string    `json:"game_id"`
	Languages       []string  `json:"languages"`
	Players         []Player  `json:"players"`
	Winner          string    `json:"winner,omitempty"`
	TopScore        int       `json:"top_score"`
	TurnCount       int       `json:"turn_count"`
	DurationSeconds int64     `json:"duration_seconds"`
	Board           []Tile    `json:"board"`
	FinishedAt      time.Time `json:"finished_at"`
}

// ArchivedGameFromModel converts model.ArchivedGame
func ArchivedGameFromModel(g *model.ArchivedGame) ArchivedGame {
	languages := g.Languages
	if languages == nil {
		languages = []string{}
	}
	return ArchivedGame{
		ID:              g.ID,
		GameID:          string(g.GameID),
		Languages:       languages,
		Players:         playersFromModel(g.Players),
		Winner:          g.Winner,
		TopScore:        g.TopScore,
		TurnCount:       g.TurnCount,
		DurationSeconds: int64(g.Duration().Seconds()),
		Board:           TilesFromModel(g.Board),
		FinishedAt:      g.FinishedAt,
	}
}

// History is the archive listing, newest first
type History struct {
	Games []ArchivedGame `json:"games"`
}

// WordRecord is the best single word
type WordRecord struct {
	Word   string `json:"word"`
	Score  int    `json:"score"`
	Player string `json:"player"`
}

// PlayerRecord is the best final score
type PlayerRecord struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Stats is the archive-wide totals
type Stats struct {
	GamesStarted  int            `json:"games_started"`
	GamesFinished int            `json:"games_finished"`
	Words         int            `json:"words"`
	Points        int            `json:"points"`
	Tiles         int            `json:"tiles"`
	Bingos        int            `json:"bingos"`
	Players       int            `json:"players"`
	PlayMinutes   int            `json:"play_minutes"`
	HighestWord   *WordRecord    `json:"highest_word,omitempty"`
	HighestScore  *PlayerRecord  `json:"highest_score,omitempty"`
	Languages     map[string]int `json:"languages"`
	FirstGameAt   *time.Time     `json:"first_game_at,omitempty"`
	LastGameAt    *time.Time     `json:"last_game_at,omitempty"`
}

// StatsFromModel converts model.Stats
func StatsFromModel(s *model.Stats) Stats {
	out := Stats{
		GamesStarted:  s.GamesStarted,
		GamesFinished: s.GamesFinished,
		Words:         s.Words,
		Points:        s.Points,
		Tiles:         s.Tiles,
		Bingos:        s.Bingos,
		Players:       s.Players,
		PlayMinutes:   s.PlayMinutes,
		Languages:     s.Languages,
	}
	if out.Languages == nil {
		out.Languages = map[string]int{}
	}
	if s.HighestWord != nil {
		out.HighestWord = &WordRecord{Word: s.HighestWord.Word, Score: s.HighestWord.Score, Player: s.HighestWord.Player}
	}
	if s.HighestScore != nil {
		out.HighestScore = &PlayerRecord{Name: s.HighestScore.Name, Score: s.HighestScore.Score}
	}
	if !s.FirstGameAt.IsZero() {
		t := s.FirstGameAt
		out.FirstGameAt = &t
	}
	if !s.LastGameAt.IsZero() {
		t := s.LastGameAt
		out.LastGameAt = &t
	}
	return out
}

// Event is the data of one live update
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    string    `json:"game_id"`
	PlayerID  string    `json:"player_id,omitempty"`
	Game      *Game     `json:"game,omitempty"`
	Play      *Play     `json:"play,omitempty"`
	ArchiveID int64     `json:"archive_id,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	TopScore  int       `json:"top_score,omitempty"`
}

// EventFromModel converts model.Event
func EventFromModel(e model.Event) Event {
	out := Event{
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		GameID:    string(e.GameID),
		PlayerID:  string(e.PlayerID),
	}
	switch p := e.Payload.(type) {
	case *model.Game:
		g := GameFromModel(p)
		out.Game = &g
	case model.PlayPayload:
		play := PlayFromModel(p.Play)
		out.Play = &play
	case model.FinishedPayload:
		out.ArchiveID = p.ArchiveID
		out.Winner = p.Winner
		out.TopScore = p.TopScore
	}
	return out
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
