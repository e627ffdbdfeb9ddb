package model

import "time"

// ArchivedGame is a finished game as held in the archive
type ArchivedGame struct {
	ID int64
	Snapshot
}

// WordRecord is a single scored word with the player who made it
type WordRecord struct {
	Word   string
	Score  int
	Player string
}

// PlayerRecord is a player's final score in one game
type PlayerRecord struct {
	Name  string
	Score int
}

// Stats aggregates every archived game
type Stats struct {
	GamesStarted  int
	GamesFinished int
	Words         int
	Points        int
	Tiles         int
	Bingos        int
	Players       int // Distinct player names
	PlayMinutes   int
	HighestWord   *WordRecord
	HighestScore  *PlayerRecord
	Languages     map[string]int // Finished games per letter set
	FirstGameAt   time.Time
	LastGameAt    time.Time
}
