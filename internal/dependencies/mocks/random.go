package mocks

import (
	"sync"

	"github.com/mcoot/tilekeeper/internal/dependencies/random"
)

// MockRandom returns queued strings in order
type MockRandom struct {
	mu      sync.Mutex
	strings []string
	calls   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.strings) == 0 {
		return ""
	}
	result := r.strings[0]
	r.strings = r.strings[1:]
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}

// Calls returns how many times String has been called
func (r *MockRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = nil
	r.calls = 0
}
