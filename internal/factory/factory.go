package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/tilekeeper/internal/dependencies/clock"
	"github.com/mcoot/tilekeeper/internal/dependencies/random"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/auth"
	"github.com/mcoot/tilekeeper/internal/services/dictionary"
	"github.com/mcoot/tilekeeper/internal/services/game"
	"github.com/mcoot/tilekeeper/internal/services/letters"
	"github.com/mcoot/tilekeeper/internal/services/scoring"
	"github.com/mcoot/tilekeeper/internal/sse"
	"github.com/mcoot/tilekeeper/internal/storage"
	"github.com/mcoot/tilekeeper/internal/storage/memory"
	redisstorage "github.com/mcoot/tilekeeper/internal/storage/redis"
	"github.com/mcoot/tilekeeper/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Archive *sqlite.Archive

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Letters           *letters.Registry
	DictionaryService *dictionary.Service
	AuthService       *auth.Service
	Engine            *game.Engine
	GameController    *game.Controller
	HubManager        *sse.HubManager
	Layout            model.Layout
}

// Config holds configuration for the application factory
type Config struct {
	// LettersDir holds extra letter set YAML files (optional)
	LettersDir string
	// ArchivePath is the sqlite file for finished games
	// If empty, an in-memory archive is used
	ArchivePath string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Rules holds the scoring rules (optional)
	// If zero value, defaults to scoring.DefaultRules()
	Rules scoring.Rules
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired. Letter sets
// are loaded here; the dictionary is loaded by the caller.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	archivePath := cfg.ArchivePath
	if archivePath == "" {
		archivePath = sqlite.MemoryPath
	}
	archive, err := sqlite.Open(archivePath)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		authCfg = auth.DefaultConfig()
	}
	rules := cfg.Rules
	if rules == (scoring.Rules{}) {
		rules = scoring.DefaultRules()
	}

	app := newWithDependencies(store, archive, clock.New(), random.New(), authCfg, rules, logger)

	if cfg.LettersDir != "" {
		n, err := app.Letters.LoadDir(cfg.LettersDir)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("load letter sets: %w", err)
		}
		logger.Info("letter sets loaded", slog.Int("count", n), slog.String("dir", cfg.LettersDir))
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	archive *sqlite.Archive,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	rules scoring.Rules,
	logger *slog.Logger,
) *App {
	layout := model.StandardLayout

	// Create services
	registry := letters.NewRegistry(logger)
	dictService := dictionary.New(store, logger)
	authService := auth.New(authCfg)
	engine := game.NewEngine(registry, rules, clk)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	gameController := game.NewController(store, engine, authService, archive, broadcaster, layout, clk, rnd, logger)

	return &App{
		Storage:           store,
		Archive:           archive,
		Clock:             clk,
		Random:            rnd,
		Letters:           registry,
		DictionaryService: dictService,
		AuthService:       authService,
		Engine:            engine,
		GameController:    gameController,
		HubManager:        hubManager,
		Layout:            layout,
	}
}

// Close stops the live update hubs and closes the stores
func (a *App) Close() error {
	a.HubManager.CloseAll()
	err := a.Archive.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

var (
	_ game.Publisher = (*sse.Broadcaster)(nil)
	_ game.Archiver  = (*sqlite.Archive)(nil)
)
