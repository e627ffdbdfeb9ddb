package dictionary

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/storage"
)

// MinWordLength is the shortest word the dictionary accepts
const MinWordLength = 2

// Service answers advisory word lookups. It never decides whether a
// placement is legal or how it scores.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new dictionary Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		words:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	s.loadWords(words)
	s.logger.Info("dictionary loaded from storage", slog.Int("words", len(words)))
	return nil
}

// LoadFromFile loads dictionary words from a file (one word per line, lines
// starting with # are skipped) and saves them to storage
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	s.loadWords(words)
	s.logger.Info("dictionary loaded from file",
		slog.String("path", path),
		slog.Int("words", len(words)),
	)
	return nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) {
	s.loadWords(words)
}

func (s *Service) loadWords(words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	for _, word := range words {
		s.words[strings.ToLower(word)] = struct{}{}
	}
	s.loaded = true
}

// IsValidWord checks if a word exists in the dictionary
func (s *Service) IsValidWord(word string) bool {
	if utf8.RuneCountInString(word) < MinWordLength {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// Check looks up each word. The result is nil when no dictionary is loaded,
// so callers can tell "unknown" from "invalid".
func (s *Service) Check(words ...string) map[string]bool {
	if !s.IsLoaded() {
		return nil
	}
	result := make(map[string]bool, len(words))
	for _, w := range words {
		result[w] = s.IsValidWord(w)
	}
	return result
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
