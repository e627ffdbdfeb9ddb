package model

import "errors"

// Common errors used across the application
var (
	// Placement errors, in the order the validator checks them
	ErrEmptyPlacement  = errors.New("placement has no tiles")
	ErrBadDirection    = errors.New("direction must be horizontal or vertical")
	ErrOutOfBounds     = errors.New("placement extends past the board edge")
	ErrLetterConflict  = errors.New("letter conflicts with a tile on the board")
	ErrMustCoverCenter = errors.New("first placement must cover the center cell")
	ErrDisconnected    = errors.New("placement does not connect to existing tiles")

	// Staged tile errors
	ErrNotInLine     = errors.New("staged tiles are not in a single row or column")
	ErrNotContiguous = errors.New("staged tiles leave a gap")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidLetter = errors.New("letter is not in the game's letter set")
	ErrNoNewTiles    = errors.New("placement adds no new tiles")

	// Game errors
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNothingToArchive = errors.New("game has no plays to archive")
	ErrArchiveNotFound  = errors.New("archived game not found")
	ErrInvalidLayout    = errors.New("invalid board layout")
	ErrUnknownLanguage  = errors.New("unknown letter set")
	ErrInvalidLetterSet = errors.New("invalid letter set")

	// Auth errors
	ErrUnauthorized = errors.New("missing or invalid table key")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
