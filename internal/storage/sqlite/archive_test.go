package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tilekeeper/internal/model"
)

type ArchiveSuite struct {
	suite.Suite
	archive *Archive
	ctx     context.Context
	start   time.Time
}

func TestArchiveSuite(t *testing.T) {
	suite.Run(t, new(ArchiveSuite))
}

func (s *ArchiveSuite) SetupTest() {
	archive, err := Open(filepath.Join(s.T().TempDir(), "nested", "archive.db"))
	s.Require().NoError(err)
	s.archive = archive
	s.ctx = context.Background()
	s.start = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
}

func (s *ArchiveSuite) TearDownTest() {
	_ = s.archive.Close()
}

func play(player model.PlayerID, seq, score int, bingo bool, tiles int, words ...model.WordScore) model.Play {
	p := model.Play{
		PlayerID: player,
		Seq:      seq,
		Words:    words,
		Score:    score,
		Bingo:    bingo,
	}
	for i := 0; i < tiles; i++ {
		p.Tiles = append(p.Tiles, model.PlacedTile{Tile: model.NewTile('A', false), Position: model.Position{Row: 7, Col: i}})
	}
	return p
}

func word(w string, score int) model.WordScore {
	return model.WordScore{Word: w, Score: score, Direction: model.Horizontal}
}

func (s *ArchiveSuite) snapshot(id model.GameID, finishedAfter time.Duration) model.Snapshot {
	return model.Snapshot{
		GameID:    id,
		Languages: []string{"de"},
		Players: []model.Player{
			{
				ID:    "p1",
				Name:  "Alice",
				Score: 78,
				Plays: []model.Play{
					play("p1", 0, 10, false, 3, word("CAT", 10)),
					play("p1", 2, 68, true, 7, word("TRADING", 68)),
				},
			},
			{
				ID:    "p2",
				Name:  "Bob",
				Score: 7,
				Plays: []model.Play{play("p2", 1, 7, false, 2, word("CAB", 7))},
			},
		},
		Winner:     "Alice",
		TopScore:   78,
		TurnCount:  3,
		Board:      []model.PlacedTile{{Tile: model.NewTile('C', true), Position: model.Position{Row: 7, Col: 7}}},
		StartedAt:  s.start,
		FinishedAt: s.start.Add(finishedAfter),
	}
}

func (s *ArchiveSuite) TestOpenInMemory() {
	archive, err := Open(MemoryPath)
	s.Require().NoError(err)
	defer archive.Close()

	_, err = archive.Save(s.ctx, s.snapshot("game-1", time.Minute))
	s.NoError(err)
}

func (s *ArchiveSuite) TestSaveAndGet() {
	snap := s.snapshot("game-1", 30*time.Minute)

	id, err := s.archive.Save(s.ctx, snap)
	s.Require().NoError(err)
	s.Positive(id)

	game, err := s.archive.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(id, game.ID)
	s.Equal(snap.GameID, game.GameID)
	s.Equal(snap.Languages, game.Languages)
	s.Equal(snap.Winner, game.Winner)
	s.Equal(snap.TopScore, game.TopScore)
	s.Equal(snap.TurnCount, game.TurnCount)
	s.Equal(snap.Board, game.Board)
	s.True(snap.StartedAt.Equal(game.StartedAt))
	s.True(snap.FinishedAt.Equal(game.FinishedAt))
	s.Equal(30*time.Minute, game.Duration())

	s.Require().Len(game.Players, 2)
	s.Equal("Alice", game.Players[0].Name)
	s.Equal(model.PlayerID("p1"), game.Players[0].ID)
	s.Require().Len(game.Players[0].Plays, 2)
	s.Equal("TRADING", game.Players[0].Plays[1].MainWord())
	s.True(game.Players[0].Plays[1].Bingo)
	s.Len(game.Players[0].Plays[1].Tiles, 7)
}

func (s *ArchiveSuite) TestGetNotFound() {
	_, err := s.archive.Get(s.ctx, 999)
	s.ErrorIs(err, model.ErrArchiveNotFound)
}

func (s *ArchiveSuite) TestDelete() {
	kept, err := s.archive.Save(s.ctx, s.snapshot("game-1", time.Minute))
	s.Require().NoError(err)
	dropped, err := s.archive.Save(s.ctx, s.snapshot("game-2", time.Minute))
	s.Require().NoError(err)

	s.Require().NoError(s.archive.Delete(s.ctx, dropped))

	_, err = s.archive.Get(s.ctx, dropped)
	s.ErrorIs(err, model.ErrArchiveNotFound)
	_, err = s.archive.Get(s.ctx, kept)
	s.NoError(err)

	stats, err := s.archive.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.GamesFinished)
	s.Equal(3, stats.Words, "words of the deleted game are gone")

	s.ErrorIs(s.archive.Delete(s.ctx, dropped), model.ErrArchiveNotFound)
}

func (s *ArchiveSuite) TestSaveWithoutLanguagesOrStart() {
	snap := s.snapshot("game-1", time.Minute)
	snap.Languages = nil
	snap.StartedAt = time.Time{}
	snap.Players[1].Plays = nil

	id, err := s.archive.Save(s.ctx, snap)
	s.Require().NoError(err)

	game, err := s.archive.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(game.Languages)
	s.True(game.StartedAt.IsZero())
	s.Nil(game.Players[1].Plays)
}

func (s *ArchiveSuite) TestHistoryNewestFirst() {
	for i, id := range []model.GameID{"first", "second", "third"} {
		_, err := s.archive.Save(s.ctx, s.snapshot(id, time.Duration(i+1)*time.Hour))
		s.Require().NoError(err)
	}

	games, err := s.archive.History(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("third"), games[0].GameID)
	s.Equal(model.GameID("first"), games[2].GameID)
	s.Len(games[0].Players, 2)
}

func (s *ArchiveSuite) TestHistoryLimit() {
	for i := 0; i < MaxHistory+5; i++ {
		_, err := s.archive.Save(s.ctx, s.snapshot("game", time.Duration(i)*time.Minute))
		s.Require().NoError(err)
	}

	games, err := s.archive.History(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(games, 2)

	games, err = s.archive.History(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(games, MaxHistory)

	games, err = s.archive.History(s.ctx, 500)
	s.Require().NoError(err)
	s.Len(games, MaxHistory)
}

func (s *ArchiveSuite) TestHistoryEmpty() {
	games, err := s.archive.History(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *ArchiveSuite) TestStatsEmpty() {
	stats, err := s.archive.Stats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.GamesFinished)
	s.Zero(stats.Points)
	s.Nil(stats.HighestWord)
	s.Nil(stats.HighestScore)
	s.Empty(stats.Languages)
	s.True(stats.FirstGameAt.IsZero())
}

func (s *ArchiveSuite) TestStats() {
	s.Require().NoError(s.archive.RecordStart(s.ctx, "game-1", s.start))
	s.Require().NoError(s.archive.RecordStart(s.ctx, "game-2", s.start))
	s.Require().NoError(s.archive.RecordStart(s.ctx, "game-3", s.start))

	_, err := s.archive.Save(s.ctx, s.snapshot("game-1", 30*time.Minute))
	s.Require().NoError(err)

	second := s.snapshot("game-2", 90*time.Minute)
	second.Languages = []string{"de", "fr"}
	second.Players[0].Name = "alice"
	second.Players[1].Name = "Carol"
	second.Players[1].Score = 120
	_, err = s.archive.Save(s.ctx, second)
	s.Require().NoError(err)

	stats, err := s.archive.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, stats.GamesStarted)
	s.Equal(2, stats.GamesFinished)
	s.Equal(6, stats.Words)
	s.Equal(78+7+78+120, stats.Points)
	s.Equal(24, stats.Tiles)
	s.Equal(2, stats.Bingos)
	s.Equal(3, stats.Players, "names are counted ignoring case")
	s.Equal(120, stats.PlayMinutes)

	s.Require().NotNil(stats.HighestWord)
	s.Equal(model.WordRecord{Word: "TRADING", Score: 68, Player: "Alice"}, *stats.HighestWord)
	s.Require().NotNil(stats.HighestScore)
	s.Equal(model.PlayerRecord{Name: "Carol", Score: 120}, *stats.HighestScore)

	s.Equal(map[string]int{"de": 2, "fr": 1}, stats.Languages)
	s.True(stats.FirstGameAt.Equal(s.start.Add(30 * time.Minute)))
	s.True(stats.LastGameAt.Equal(s.start.Add(90 * time.Minute)))
}
