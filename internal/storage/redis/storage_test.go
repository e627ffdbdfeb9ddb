package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tilekeeper/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newGame(id model.GameID, updated time.Time) *model.Game {
	game := model.NewGame(id, model.StandardLayout, []string{"fr"}, updated)
	game.State = model.GameStateInProgress
	game.Players = []model.Player{
		{
			ID:    "p1",
			Name:  "Alice",
			Score: 10,
			Plays: []model.Play{{
				PlayerID: "p1",
				Words:    []model.WordScore{{Word: "CAT", Score: 10, Start: model.Position{Row: 7, Col: 7}, Direction: model.Horizontal}},
				Score:    10,
				Tiles:    []model.PlacedTile{{Tile: model.NewTile('C', false), Position: model.Position{Row: 7, Col: 7}}},
				PlayedAt: updated,
			}},
		},
		{ID: "p2", Name: "Bob"},
	}
	game.Board.Set(model.Position{Row: 7, Col: 7}, model.NewTile('C', false))
	game.Pending = []model.PlacedTile{{Tile: model.NewTile('A', true), Position: model.Position{Row: 8, Col: 7}, IsNew: true}}
	game.PendingDirection = model.Vertical
	game.CurrentPlayer = 1
	game.NextSeq = 1
	return game
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := newGame("game-1", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(game.State, retrieved.State)
	s.Equal(game.Languages, retrieved.Languages)
	s.Equal(game.Players, retrieved.Players)
	s.Equal(game.Pending, retrieved.Pending)
	s.Equal(game.PendingDirection, retrieved.PendingDirection)
	s.Equal(game.CurrentPlayer, retrieved.CurrentPlayer)
	s.True(game.UpdatedAt.Equal(retrieved.UpdatedAt))

	s.Equal(game.Board.Layout, retrieved.Board.Layout)
	s.Equal(game.Board.Tiles(), retrieved.Board.Tiles())
	s.Equal(model.PremiumCenter, retrieved.Board.Premium(model.Position{Row: 7, Col: 7}))
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGameTTL() {
	game := newGame("game-1", time.Now())
	_ = s.storage.SaveGame(s.ctx, game)

	ttl := s.mini.TTL(gameKey(game.ID))
	s.True(ttl > 0, "Game should have TTL")
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, newGame("game-1", time.Now()))

	err := s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)

	s.False(s.mini.Exists(gamesIndexKey()), "index entry removed")
}

func (s *StorageSuite) TestGameExists() {
	exists, err := s.storage.GameExists(s.ctx, "game-1")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveGame(s.ctx, newGame("game-1", time.Now()))

	exists, err = s.storage.GameExists(s.ctx, "game-1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListGamesNewestFirst() {
	now := time.Now()
	_ = s.storage.SaveGame(s.ctx, newGame("old", now.Add(-time.Hour)))
	_ = s.storage.SaveGame(s.ctx, newGame("new", now))

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal(model.GameID("new"), games[0].ID)
	s.Equal(model.GameID("old"), games[1].ID)
}

func (s *StorageSuite) TestListGamesEmpty() {
	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *StorageSuite) TestSaveAndDeleteKeepIndexInStep() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, newGame("game-1", time.Now())))

	s.True(s.mini.Exists(gameKey("game-1")))
	s.Equal(time.Hour, s.mini.TTL(gameKey("game-1")))
	isMember, err := s.storage.client.SIsMember(s.ctx, gamesIndexKey(), gameKey("game-1")).Result()
	s.Require().NoError(err)
	s.True(isMember)

	s.Require().NoError(s.storage.DeleteGame(s.ctx, "game-1"))

	s.False(s.mini.Exists(gameKey("game-1")))
	isMember, err = s.storage.client.SIsMember(s.ctx, gamesIndexKey(), gameKey("game-1")).Result()
	s.Require().NoError(err)
	s.False(isMember)
}

func (s *StorageSuite) TestListGamesPrunesExpired() {
	_ = s.storage.SaveGame(s.ctx, newGame("game-1", time.Now()))
	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SaveGame(s.ctx, newGame("game-2", time.Now()))

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal(model.GameID("game-2"), games[0].ID)

	members, err := s.mini.Members(gamesIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{gameKey("game-2")}, members)
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"apple", "banana", "cherry"}

	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(words, retrieved) // Order may differ (SET)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplacesExisting() {
	words1 := []string{"apple", "banana"}
	words2 := []string{"cherry", "date", "elderberry"}

	_ = s.storage.SaveDictionaryWords(s.ctx, words1)
	_ = s.storage.SaveDictionaryWords(s.ctx, words2)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(words2, retrieved)
}

func (s *StorageSuite) TestDictionaryNoTTL() {
	words := []string{"apple"}
	_ = s.storage.SaveDictionaryWords(s.ctx, words)

	ttl := s.mini.TTL(dictionaryKey())
	s.Equal(time.Duration(0), ttl, "Dictionary should not have TTL")
}
