package auth

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tilekeeper/internal/model"
)

// KeyPrefix starts every table key so they are easy to spot in shell history
const KeyPrefix = "tk_"

// Service issues and checks table keys. Only the bcrypt hash of a key is
// ever stored on a game.
type Service struct {
	cost int
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{cost: cfg.BcryptCost}
}

// IssueKey generates a new table key and returns it with its hash
func (s *Service) IssueKey() (key string, hash string, err error) {
	key = generateID(KeyPrefix)
	h, err := bcrypt.GenerateFromPassword([]byte(key), s.cost)
	if err != nil {
		return "", "", err
	}
	return key, string(h), nil
}

// Verify checks a presented key against the stored hash
func (s *Service) Verify(hash, key string) error {
	if hash == "" || key == "" {
		return model.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return model.ErrUnauthorized
	}
	return nil
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
