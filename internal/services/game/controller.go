package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/tilekeeper/internal/dependencies/clock"
	"github.com/mcoot/tilekeeper/internal/dependencies/random"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/auth"
	"github.com/mcoot/tilekeeper/internal/storage"
)

const (
	gameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	gameIDLength   = 8
	maxIDAttempts  = 5
)

// Publisher receives an event after every change to a game
type Publisher interface {
	Publish(event model.Event)
}

// Archiver keeps finished games
type Archiver interface {
	RecordStart(ctx context.Context, gameID model.GameID, at time.Time) error
	Save(ctx context.Context, snap model.Snapshot) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Outcome is the result of one transition on a stored game
type Outcome struct {
	Game      *model.Game
	Changed   bool
	Play      *model.Play // Committed or undone play, if any
	ArchiveID int64       // Set by Finish
}

// Controller runs engine transitions against stored games, one at a time
// per game, and publishes what changed
type Controller struct {
	storage   storage.Storage
	engine    *Engine
	auth      *auth.Service
	archive   Archiver
	publisher Publisher
	layout    model.Layout
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[model.GameID]*sync.Mutex
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	engine *Engine,
	auth *auth.Service,
	archive Archiver,
	publisher Publisher,
	layout model.Layout,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		engine:    engine,
		auth:      auth,
		archive:   archive,
		publisher: publisher,
		layout:    layout,
		clock:     clock,
		random:    random,
		logger:    logger,
		locks:     make(map[model.GameID]*sync.Mutex),
	}
}

func (c *Controller) lock(id model.GameID) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create starts a new game in setup and returns it with its table key. The
// key is not stored and cannot be recovered.
func (c *Controller) Create(ctx context.Context, languages []string) (*model.Game, string, error) {
	languages = normalizeLanguages(languages)
	if _, err := c.engine.letters.Table(languages...); err != nil {
		return nil, "", err
	}

	id, err := c.newGameID(ctx)
	if err != nil {
		return nil, "", err
	}

	key, hash, err := c.auth.IssueKey()
	if err != nil {
		return nil, "", err
	}

	game := model.NewGame(id, c.layout, languages, c.clock.Now())
	game.TableKeyHash = hash

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, "", err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.Any("languages", languages),
	)
	return game, key, nil
}

func (c *Controller) newGameID(ctx context.Context) (model.GameID, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := model.GameID(c.random.String(gameIDLength, gameIDAlphabet))
		if id == "" {
			continue
		}
		exists, err := c.storage.GameExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a game ID")
}

func normalizeLanguages(languages []string) []string {
	cleaned := lo.FilterMap(languages, func(l string, _ int) (string, bool) {
		l = strings.ToLower(strings.TrimSpace(l))
		return l, l != ""
	})
	if len(cleaned) == 0 {
		return nil
	}
	return lo.Uniq(cleaned)
}

// Get retrieves a game by ID
func (c *Controller) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// List returns every live game, most recently updated first
func (c *Controller) List(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// Authorize checks a table key against the game it claims to unlock
func (c *Controller) Authorize(ctx context.Context, id model.GameID, key string) error {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	return c.auth.Verify(game.TableKeyHash, key)
}

// transition is one engine step; it reports whether the game changed
type transition func(g *model.Game) (changed bool, play *model.Play, err error)

func (c *Controller) apply(ctx context.Context, id model.GameID, action string, fn transition) (*Outcome, error) {
	unlock := c.lock(id)
	defer unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, play, err := fn(game)
	if err != nil {
		c.logger.Debug("transition rejected",
			slog.String("game_id", string(id)),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	outcome := &Outcome{Game: game, Changed: changed, Play: play}
	if !changed {
		return outcome, nil
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(id)),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game updated",
		slog.String("game_id", string(id)),
		slog.String("action", action),
		slog.String("state", string(game.State)),
	)
	c.publish(model.EventGameUpdated, game, "", game.Clone())
	return outcome, nil
}

func (c *Controller) publish(t model.EventType, game *model.Game, player model.PlayerID, payload any) {
	c.publisher.Publish(model.Event{
		Type:      t,
		Timestamp: c.clock.Now(),
		GameID:    game.ID,
		PlayerID:  player,
		Payload:   payload,
	})
}

func (c *Controller) recordStart(ctx context.Context, game *model.Game) {
	if err := c.archive.RecordStart(ctx, game.ID, game.StartedAt); err != nil {
		c.logger.Warn("failed to record game start",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// changedOnly adapts a bool engine step to a transition
func changedOnly(fn func(g *model.Game) bool) transition {
	return func(g *model.Game) (bool, *model.Play, error) {
		return fn(g), nil, nil
	}
}

// Setup

// AddPlayer seats a new player at the end of the rotation
func (c *Controller) AddPlayer(ctx context.Context, id model.GameID, name string) (*Outcome, error) {
	return c.apply(ctx, id, "add_player", func(g *model.Game) (bool, *model.Play, error) {
		_, ok := c.engine.AddPlayer(g, name)
		return ok, nil, nil
	})
}

// RemovePlayer drops a player during setup
func (c *Controller) RemovePlayer(ctx context.Context, id model.GameID, player model.PlayerID) (*Outcome, error) {
	return c.apply(ctx, id, "remove_player", changedOnly(func(g *model.Game) bool {
		return c.engine.RemovePlayer(g, player)
	}))
}

// RenamePlayer changes a player's display name
func (c *Controller) RenamePlayer(ctx context.Context, id model.GameID, player model.PlayerID, name string) (*Outcome, error) {
	return c.apply(ctx, id, "rename_player", changedOnly(func(g *model.Game) bool {
		return c.engine.RenamePlayer(g, player, name)
	}))
}

// ReorderPlayers sets the rotation order
func (c *Controller) ReorderPlayers(ctx context.Context, id model.GameID, order []model.PlayerID) (*Outcome, error) {
	return c.apply(ctx, id, "reorder_players", changedOnly(func(g *model.Game) bool {
		return c.engine.ReorderPlayers(g, order)
	}))
}

// SetCurrentPlayer hands the turn to a player
func (c *Controller) SetCurrentPlayer(ctx context.Context, id model.GameID, player model.PlayerID) (*Outcome, error) {
	return c.apply(ctx, id, "set_current_player", changedOnly(func(g *model.Game) bool {
		return c.engine.SetCurrentPlayer(g, player)
	}))
}

// SetScore overrides a player's total
func (c *Controller) SetScore(ctx context.Context, id model.GameID, player model.PlayerID, score int) (*Outcome, error) {
	return c.apply(ctx, id, "set_score", changedOnly(func(g *model.Game) bool {
		return c.engine.SetScore(g, player, score)
	}))
}

// Start begins play
func (c *Controller) Start(ctx context.Context, id model.GameID) (*Outcome, error) {
	outcome, err := c.apply(ctx, id, "start", changedOnly(func(g *model.Game) bool {
		return c.engine.Start(g)
	}))
	if err == nil && outcome.Changed {
		c.recordStart(ctx, outcome.Game)
	}
	return outcome, err
}

// Staging

// Propose stages a whole placement, replacing anything already staged
func (c *Controller) Propose(ctx context.Context, id model.GameID, p model.Placement) (*Outcome, error) {
	return c.apply(ctx, id, "propose", func(g *model.Game) (bool, *model.Play, error) {
		changed, err := c.engine.Propose(g, p)
		return changed, nil, err
	})
}

// PlaceTile stages one tile
func (c *Controller) PlaceTile(ctx context.Context, id model.GameID, pos model.Position, tile model.Tile) (*Outcome, error) {
	return c.apply(ctx, id, "place_tile", func(g *model.Game) (bool, *model.Play, error) {
		changed, err := c.engine.PlaceTile(g, pos, tile)
		return changed, nil, err
	})
}

// RemovePending takes back one staged tile
func (c *Controller) RemovePending(ctx context.Context, id model.GameID, pos model.Position) (*Outcome, error) {
	return c.apply(ctx, id, "remove_pending", changedOnly(func(g *model.Game) bool {
		return c.engine.RemovePending(g, pos)
	}))
}

// ClearPending takes back every staged tile
func (c *Controller) ClearPending(ctx context.Context, id model.GameID) (*Outcome, error) {
	return c.apply(ctx, id, "clear_pending", changedOnly(c.engine.ClearPending))
}

// Preview scores the staged tiles of a game without changing it
func (c *Controller) Preview(ctx context.Context, id model.GameID) (*model.Game, model.ScoreBreakdown, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, model.ScoreBreakdown{}, err
	}
	breakdown, err := c.engine.Preview(game)
	if err != nil {
		return nil, model.ScoreBreakdown{}, err
	}
	return game, breakdown, nil
}

// Turns

// Commit scores and records the staged tiles for the current player
func (c *Controller) Commit(ctx context.Context, id model.GameID) (*Outcome, error) {
	outcome, err := c.apply(ctx, id, "commit", func(g *model.Game) (bool, *model.Play, error) {
		play, err := c.engine.Commit(g)
		return play != nil, play, err
	})
	if err != nil || outcome.Play == nil {
		return outcome, err
	}

	c.logger.Info("play committed",
		slog.String("game_id", string(id)),
		slog.String("player_id", string(outcome.Play.PlayerID)),
		slog.String("word", outcome.Play.MainWord()),
		slog.Int("score", outcome.Play.Score),
	)
	c.publish(model.EventPlayCommitted, outcome.Game, outcome.Play.PlayerID, model.PlayPayload{Play: *outcome.Play})
	return outcome, nil
}

// Pass moves the turn on without a play
func (c *Controller) Pass(ctx context.Context, id model.GameID) (*Outcome, error) {
	return c.apply(ctx, id, "pass", changedOnly(c.engine.Pass))
}

// Undo takes back the most recent play at the table
func (c *Controller) Undo(ctx context.Context, id model.GameID) (*Outcome, error) {
	outcome, err := c.apply(ctx, id, "undo", func(g *model.Game) (bool, *model.Play, error) {
		play := c.engine.Undo(g)
		return play != nil, play, nil
	})
	if err != nil || outcome.Play == nil {
		return outcome, err
	}

	c.logger.Info("play undone",
		slog.String("game_id", string(id)),
		slog.String("player_id", string(outcome.Play.PlayerID)),
		slog.Int("score", outcome.Play.Score),
	)
	c.publish(model.EventPlayUndone, outcome.Game, outcome.Play.PlayerID, model.PlayPayload{Play: *outcome.Play})
	return outcome, nil
}

// Resets

// Reset starts a fresh board with the same players without archiving
func (c *Controller) Reset(ctx context.Context, id model.GameID) (*Outcome, error) {
	outcome, err := c.apply(ctx, id, "reset", changedOnly(c.engine.Reset))
	if err == nil && outcome.Game.IsStarted() {
		c.recordStart(ctx, outcome.Game)
	}
	return outcome, err
}

// FullReset clears the board and every player
func (c *Controller) FullReset(ctx context.Context, id model.GameID) (*Outcome, error) {
	return c.apply(ctx, id, "full_reset", changedOnly(c.engine.FullReset))
}

// Finish archives the game and starts a new one with the same players. A
// game with no plays has nothing to archive. The archive row is written
// first and removed again if the reset game cannot be saved.
func (c *Controller) Finish(ctx context.Context, id model.GameID) (*Outcome, error) {
	var snap model.Snapshot
	var archiveID int64

	outcome, err := c.apply(ctx, id, "finish", func(g *model.Game) (bool, *model.Play, error) {
		if g.PlayCount() == 0 {
			return false, nil, model.ErrNothingToArchive
		}
		snap = c.engine.Snapshot(g)

		var err error
		archiveID, err = c.archive.Save(ctx, snap)
		if err != nil {
			return false, nil, fmt.Errorf("archive game: %w", err)
		}
		return c.engine.Reset(g), nil, nil
	})
	if err != nil {
		if archiveID != 0 {
			// The live game was not reset; drop the archive row so a retry
			// does not record the game twice
			c.discardArchive(ctx, id, archiveID)
		}
		return nil, err
	}
	outcome.ArchiveID = archiveID

	c.logger.Info("game finished",
		slog.String("game_id", string(id)),
		slog.Int64("archive_id", archiveID),
		slog.String("winner", snap.Winner),
		slog.Int("top_score", snap.TopScore),
	)
	c.publish(model.EventGameFinished, outcome.Game, "", model.FinishedPayload{
		ArchiveID: archiveID,
		Winner:    snap.Winner,
		TopScore:  snap.TopScore,
	})
	if outcome.Game.IsStarted() {
		c.recordStart(ctx, outcome.Game)
	}
	return outcome, nil
}

func (c *Controller) discardArchive(ctx context.Context, id model.GameID, archiveID int64) {
	if err := c.archive.Delete(ctx, archiveID); err != nil {
		c.logger.Error("failed to discard archived game",
			slog.String("game_id", string(id)),
			slog.Int64("archive_id", archiveID),
			slog.String("error", err.Error()),
		)
	}
}

// Delete removes a live game
func (c *Controller) Delete(ctx context.Context, id model.GameID) error {
	unlock := c.lock(id)
	defer unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if err := c.storage.DeleteGame(ctx, id); err != nil {
		return err
	}

	// Waiters already holding this mutex see the game gone
	c.mu.Lock()
	delete(c.locks, id)
	c.mu.Unlock()

	c.logger.Info("game deleted", slog.String("game_id", string(id)))
	c.publish(model.EventGameDeleted, game, "", nil)
	return nil
}
