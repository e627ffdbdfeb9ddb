package letters

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/tilekeeper/internal/model"
)

// English is also registered by name so it can be requested explicitly
const LanguageEnglish = "en"

var builtinSets = map[string]Table{
	LanguageEnglish: {},
	"de":            {'Ä': 6, 'Ö': 8, 'Ü': 6, 'ß': 10},
	"fr": {
		'É': 2, 'È': 4, 'Ê': 4, 'Ë': 4, 'À': 4, 'Â': 4, 'Î': 4,
		'Ï': 4, 'Ô': 4, 'Ù': 4, 'Û': 4, 'Ç': 4, 'Œ': 10,
	},
	"es": {'Ñ': 8, 'Á': 4, 'É': 4, 'Í': 4, 'Ó': 4, 'Ú': 4, 'Ü': 6},
}

// Registry holds the named letter sets that can be layered onto English
type Registry struct {
	mu     sync.RWMutex
	sets   map[string]Table
	logger *slog.Logger
}

// NewRegistry creates a registry with the built-in language sets
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		sets:   make(map[string]Table, len(builtinSets)),
		logger: logger,
	}
	for name, set := range builtinSets {
		r.sets[name] = set.Clone()
	}
	return r
}

// Register adds or replaces a named letter set
func (r *Registry) Register(name string, set Table) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: missing name", model.ErrInvalidLetterSet)
	}
	for letter, value := range set {
		if !unicode.IsLetter(letter) {
			return fmt.Errorf("%w: %q is not a letter", model.ErrInvalidLetterSet, letter)
		}
		if value < 0 {
			return fmt.Errorf("%w: %q has negative value %d", model.ErrInvalidLetterSet, letter, value)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[name] = Table{}.Merge(set)
	return nil
}

// Table builds the scoring table for a game: English plus each named set in order
func (r *Registry) Table(languages ...string) (Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := English.Clone()
	for _, lang := range languages {
		set, ok := r.sets[normalizeName(lang)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownLanguage, lang)
		}
		table = table.Merge(set)
	}
	return table, nil
}

// Has reports whether a set with the given name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sets[normalizeName(name)]
	return ok
}

// Names returns the registered set names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.sets)
	sort.Strings(names)
	return names
}

// setFile is the YAML shape of a custom letter set
type setFile struct {
	Name    string         `yaml:"name"`
	Letters map[string]int `yaml:"letters"`
}

// LoadFile registers a custom letter set from a YAML file
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read letter set %s: %w", path, err)
	}

	var f setFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse letter set %s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	set := make(Table, len(f.Letters))
	for key, value := range f.Letters {
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("%w: %s: key %q must be a single letter", model.ErrInvalidLetterSet, path, key)
		}
		letter, _ := utf8.DecodeRuneInString(key)
		set[unicode.ToUpper(letter)] = value
	}

	if err := r.Register(f.Name, set); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.logger.Info("letter set loaded",
		slog.String("name", normalizeName(f.Name)),
		slog.Int("letters", len(set)),
	)
	return nil
}

// LoadDir registers every *.yaml / *.yml file in dir and returns how many were loaded
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read letter set directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
