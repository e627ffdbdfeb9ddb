package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	key := gameKey(game.ID)

	// MULTI/EXEC so the value and its index entry land together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.GameTTL)
	pipe.SAdd(ctx, gamesIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	key := gameKey(id)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, gamesIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// ListGames returns every live game, most recently updated first. Index
// entries whose game has expired are pruned.
func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	indexKey := gamesIndexKey()

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Game{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	var expired []interface{}
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, keys[i])
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, indexKey, expired...).Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].UpdatedAt.After(games[j].UpdatedAt)
	})
	return games, nil
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	key := dictionaryKey()

	// Check if dictionary exists
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}

	// Get all words from the set
	words, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	return words, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	key := dictionaryKey()

	// Delete existing dictionary and add new words atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)

	if len(words) > 0 {
		// Convert []string to []interface{} for SAdd
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}
