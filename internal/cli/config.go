package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Key       string
	KeyDir    string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TILEKEEPER_SERVER", "http://localhost:8080"),
		Key:       os.Getenv("TILEKEEPER_KEY"),
		KeyDir:    getEnvOrDefault("TILEKEEPER_KEY_DIR", defaultKeyDir()),
		Output:    "text",
		Verbose:   false,
	}
}

// KeyFor returns the table key for a game: the --key flag if set, otherwise
// the key saved when the game was created. A missing key is not an error;
// the server rejects the request instead.
func (c *Config) KeyFor(gameID string) (string, error) {
	if c.Key != "" {
		return c.Key, nil
	}

	data, err := os.ReadFile(c.keyPath(gameID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveKey stores a game's table key
func (c *Config) SaveKey(gameID, key string) error {
	if err := os.MkdirAll(c.KeyDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(gameID), []byte(key), 0600)
}

// RemoveKey forgets a game's table key
func (c *Config) RemoveKey(gameID string) error {
	err := os.Remove(c.keyPath(gameID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) keyPath(gameID string) string {
	return filepath.Join(c.KeyDir, filepath.Base(gameID))
}

func defaultKeyDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tilekeeper", "keys")
	}
	return filepath.Join(home, ".tilekeeper", "keys")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// useKey loads the table key for a game into the client
func useKey(gameID string) error {
	key, err := cfg.KeyFor(gameID)
	if err != nil {
		return fmt.Errorf("read table key: %w", err)
	}
	client.SetToken(key)
	return nil
}
