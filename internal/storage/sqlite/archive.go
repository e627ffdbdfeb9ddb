// Package sqlite keeps finished games in a SQLite database for history and
// statistics. Uses the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/mcoot/tilekeeper/internal/model"
)

// MemoryPath opens a private in-memory archive
const MemoryPath = ":memory:"

// MaxHistory caps the number of games History returns
const MaxHistory = 50

// Archive stores finished-game snapshots
type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive at the given path. It creates the parent
// directories if needed and runs migrations.
func Open(dbPath string) (*Archive, error) {
	if dbPath != MemoryPath {
		// Expand ~ to home directory
		if strings.HasPrefix(dbPath, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("archive: cannot expand home directory: %w", err)
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}

		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: cannot open database: %w", err)
	}
	// Each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: cannot connect to database: %w", err)
	}

	archive := &Archive{db: db}

	if err := archive.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migration failed: %w", err)
	}

	return archive, nil
}

func (a *Archive) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			languages TEXT NOT NULL DEFAULT '',
			winner TEXT NOT NULL DEFAULT '',
			top_score INTEGER NOT NULL DEFAULT 0,
			turn_count INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			board TEXT NOT NULL DEFAULT '[]',
			started_at DATETIME,
			finished_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_games_finished ON games(finished_at DESC);

		CREATE TABLE IF NOT EXISTS game_players (
			game_ref INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			seat INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			tiles INTEGER NOT NULL DEFAULT 0,
			bingos INTEGER NOT NULL DEFAULT 0,
			plays TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (game_ref, seat)
		);
		CREATE INDEX IF NOT EXISTS idx_game_players_score ON game_players(score DESC);

		CREATE TABLE IF NOT EXISTS game_words (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_ref INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			player_name TEXT NOT NULL,
			word TEXT NOT NULL,
			score INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_words_score ON game_words(score DESC);

		CREATE TABLE IF NOT EXISTS game_starts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			started_at DATETIME NOT NULL
		);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Close closes the database connection
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// RecordStart counts a game starting, whether or not it is ever finished
func (a *Archive) RecordStart(ctx context.Context, gameID model.GameID, at time.Time) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT INTO game_starts (game_id, started_at) VALUES (?, ?)",
		string(gameID), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive: cannot record start: %w", err)
	}
	return nil
}

// Save stores a finished game and returns its archive ID
func (a *Archive) Save(ctx context.Context, snap model.Snapshot) (int64, error) {
	board, err := json.Marshal(snap.Board)
	if err != nil {
		return 0, fmt.Errorf("archive: cannot encode board: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("archive: cannot begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var startedAt any
	if !snap.StartedAt.IsZero() {
		startedAt = snap.StartedAt.UTC()
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games
		 (game_id, languages, winner, top_score, turn_count, duration_secs, board, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(snap.GameID),
		strings.Join(snap.Languages, ","),
		snap.Winner,
		snap.TopScore,
		snap.TurnCount,
		int64(snap.Duration().Seconds()),
		string(board),
		startedAt,
		snap.FinishedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("archive: cannot save game: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("archive: cannot get inserted ID: %w", err)
	}

	for seat, p := range snap.Players {
		plays, err := json.Marshal(p.Plays)
		if err != nil {
			return 0, fmt.Errorf("archive: cannot encode plays: %w", err)
		}
		tiles := lo.SumBy(p.Plays, func(play model.Play) int { return len(play.Tiles) })
		bingos := lo.CountBy(p.Plays, func(play model.Play) bool { return play.Bingo })

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_players (game_ref, seat, player_id, name, score, tiles, bingos, plays)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, seat, string(p.ID), p.Name, p.Score, tiles, bingos, string(plays),
		); err != nil {
			return 0, fmt.Errorf("archive: cannot save player: %w", err)
		}

		for _, play := range p.Plays {
			for _, w := range play.Words {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO game_words (game_ref, player_name, word, score) VALUES (?, ?, ?, ?)",
					id, p.Name, w.Word, w.Score,
				); err != nil {
					return 0, fmt.Errorf("archive: cannot save word: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("archive: cannot commit game: %w", err)
	}
	return id, nil
}

// Delete removes an archived game with its players and words
func (a *Archive) Delete(ctx context.Context, id int64) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: cannot begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM game_words WHERE game_ref = ?",
		"DELETE FROM game_players WHERE game_ref = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("archive: cannot delete game: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("archive: cannot delete game: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrArchiveNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: cannot commit: %w", err)
	}
	return nil
}

// Get returns one archived game
func (a *Archive) Get(ctx context.Context, id int64) (*model.ArchivedGame, error) {
	row := a.db.QueryRowContext(ctx, selectGame+" WHERE id = ?", id)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrArchiveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("archive: cannot query game: %w", err)
	}

	if err := a.loadPlayers(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// History returns archived games newest first. limit is clamped to
// [1, MaxHistory].
func (a *Archive) History(ctx context.Context, limit int) ([]*model.ArchivedGame, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}

	rows, err := a.db.QueryContext(ctx, selectGame+" ORDER BY finished_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("archive: cannot query history: %w", err)
	}

	var games []*model.ArchivedGame
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("archive: cannot scan row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("archive: row iteration error: %w", err)
	}
	rows.Close()

	for _, game := range games {
		if err := a.loadPlayers(ctx, game); err != nil {
			return nil, err
		}
	}
	return games, nil
}

const selectGame = `SELECT id, game_id, languages, winner, top_score, turn_count, board, started_at, finished_at FROM games`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*model.ArchivedGame, error) {
	var (
		game       model.ArchivedGame
		gameID     string
		languages  string
		board      string
		startedAt  any
		finishedAt any
	)
	if err := row.Scan(
		&game.ID,
		&gameID,
		&languages,
		&game.Winner,
		&game.TopScore,
		&game.TurnCount,
		&board,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}

	game.GameID = model.GameID(gameID)
	if languages != "" {
		game.Languages = strings.Split(languages, ",")
	}
	if err := json.Unmarshal([]byte(board), &game.Board); err != nil {
		return nil, fmt.Errorf("cannot decode board: %w", err)
	}
	game.StartedAt = parseTime(startedAt)
	game.FinishedAt = parseTime(finishedAt)
	return &game, nil
}

func (a *Archive) loadPlayers(ctx context.Context, game *model.ArchivedGame) error {
	rows, err := a.db.QueryContext(ctx,
		"SELECT player_id, name, score, plays FROM game_players WHERE game_ref = ? ORDER BY seat",
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("archive: cannot query players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     model.Player
			id    string
			plays string
		)
		if err := rows.Scan(&id, &p.Name, &p.Score, &plays); err != nil {
			return fmt.Errorf("archive: cannot scan player: %w", err)
		}
		p.ID = model.PlayerID(id)
		if err := json.Unmarshal([]byte(plays), &p.Plays); err != nil {
			return fmt.Errorf("archive: cannot decode plays: %w", err)
		}
		game.Players = append(game.Players, p)
	}
	return rows.Err()
}

// Stats returns totals across the whole archive
func (a *Archive) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{Languages: make(map[string]int)}

	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_starts").Scan(&stats.GamesStarted); err != nil {
		return nil, fmt.Errorf("archive: cannot count starts: %w", err)
	}

	var (
		durationSecs int64
		first, last  any
	)
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_secs), 0), MIN(finished_at), MAX(finished_at) FROM games`,
	).Scan(&stats.GamesFinished, &durationSecs, &first, &last); err != nil {
		return nil, fmt.Errorf("archive: cannot get game stats: %w", err)
	}
	stats.PlayMinutes = int(durationSecs / 60)
	stats.FirstGameAt = parseTime(first)
	stats.LastGameAt = parseTime(last)

	if err := a.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0), COALESCE(SUM(tiles), 0), COALESCE(SUM(bingos), 0),
		        COUNT(DISTINCT lower(name))
		 FROM game_players`,
	).Scan(&stats.Points, &stats.Tiles, &stats.Bingos, &stats.Players); err != nil {
		return nil, fmt.Errorf("archive: cannot get player stats: %w", err)
	}

	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_words").Scan(&stats.Words); err != nil {
		return nil, fmt.Errorf("archive: cannot count words: %w", err)
	}

	var best model.WordRecord
	err := a.db.QueryRowContext(ctx,
		"SELECT word, score, player_name FROM game_words ORDER BY score DESC, id ASC LIMIT 1",
	).Scan(&best.Word, &best.Score, &best.Player)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive: cannot get highest word: %w", err)
	}
	if err == nil {
		stats.HighestWord = &best
	}

	var top model.PlayerRecord
	err = a.db.QueryRowContext(ctx,
		"SELECT name, score FROM game_players ORDER BY score DESC, game_ref ASC LIMIT 1",
	).Scan(&top.Name, &top.Score)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive: cannot get highest score: %w", err)
	}
	if err == nil {
		stats.HighestScore = &top
	}

	languages, err := a.languageCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.Languages = languages

	return stats, nil
}

func (a *Archive) languageCounts(ctx context.Context) (map[string]int, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT languages FROM games WHERE languages != ''")
	if err != nil {
		return nil, fmt.Errorf("archive: cannot query languages: %w", err)
	}
	defer rows.Close()

	var all []string
	for rows.Next() {
		var languages string
		if err := rows.Scan(&languages); err != nil {
			return nil, fmt.Errorf("archive: cannot scan languages: %w", err)
		}
		all = append(all, lo.Uniq(strings.Split(languages, ","))...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: row iteration error: %w", err)
	}
	return lo.CountValues(all), nil
}

// Text forms the driver may hand back for DATETIME values and aggregates
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTime handles the driver returning either time.Time or text
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}
