package storage

import (
	"context"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Storage defines the interface for live game persistence
type Storage interface {
	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	GameExists(ctx context.Context, id model.GameID) (bool, error)
	ListGames(ctx context.Context) ([]*model.Game, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error
}
