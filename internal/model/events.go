package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameUpdated   EventType = "game_updated"
	EventPlayCommitted EventType = "play_committed"
	EventPlayUndone    EventType = "play_undone"
	EventGameFinished  EventType = "game_finished"
	EventGameDeleted   EventType = "game_deleted"
)

// Event is published to live listeners after a game changes
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID // The player who made or lost the play, if any
	Payload   any      // Type-specific data
}

// PlayPayload carries the play that was committed or undone
type PlayPayload struct {
	Play Play
}

// FinishedPayload carries the archive record of a finished game
type FinishedPayload struct {
	ArchiveID int64
	Winner    string
	TopScore  int
}
