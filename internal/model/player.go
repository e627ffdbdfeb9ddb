package model

import "time"

// PlayerID uniquely identifies a player within a game
type PlayerID string

// Player is a participant at the table
type Player struct {
	ID    PlayerID
	Name  string
	Score int
	Plays []Play // Oldest first
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	clone := p
	if p.Plays != nil {
		clone.Plays = make([]Play, len(p.Plays))
		for i, play := range p.Plays {
			clone.Plays[i] = play.Clone()
		}
	}
	return clone
}

// LastPlay returns the player's most recent play, or nil
func (p *Player) LastPlay() *Play {
	if len(p.Plays) == 0 {
		return nil
	}
	return &p.Plays[len(p.Plays)-1]
}

// Play is one committed placement
type Play struct {
	PlayerID PlayerID
	Seq      int
	Words    []WordScore
	Score    int
	Bingo    bool
	Tiles    []PlacedTile // Only the tiles this play put on the board
	PlayedAt time.Time
}

// MainWord returns the first scored word, or empty
func (p Play) MainWord() string {
	if len(p.Words) == 0 {
		return ""
	}
	return p.Words[0].Word
}

// Clone returns a deep copy of the play
func (p Play) Clone() Play {
	clone := p
	clone.Words = append([]WordScore(nil), p.Words...)
	clone.Tiles = append([]PlacedTile(nil), p.Tiles...)
	return clone
}
