package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tilekeeper/internal/dependencies/mocks"
	"github.com/mcoot/tilekeeper/internal/services/auth"
	"github.com/mcoot/tilekeeper/internal/services/scoring"
	"github.com/mcoot/tilekeeper/internal/storage/memory"
	"github.com/mcoot/tilekeeper/internal/storage/sqlite"
	"github.com/mcoot/tilekeeper/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Game IDs come from MockRandom, so queue one per game before creating it.
func NewTestApp() (*TestApp, error) {
	archive, err := sqlite.Open(sqlite.MemoryPath)
	if err != nil {
		return nil, err
	}

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store,
		archive,
		mockClock,
		mockRandom,
		auth.Config{BcryptCost: bcrypt.MinCost},
		scoring.DefaultRules(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}, nil
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() {
	t.DictionaryService.LoadWords([]string{
		"at", "be", "in", "is", "it", "to",
		"ab", "ta", "ace", "act", "bat", "cab", "can", "car", "cat", "eat",
		"tab", "tea", "ten", "coat", "cart", "cats", "tabs", "trading",
	})
}
