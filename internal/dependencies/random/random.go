package random

import (
	"crypto/rand"
	"math/big"
)

// Random generates identifiers and can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a random string of the given length from the given
// alphabet. It returns "" if the system random source fails.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	symbols := []rune(alphabet)
	limit := big.NewInt(int64(len(symbols)))

	result := make([]rune, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return ""
		}
		result[i] = symbols[n.Int64()]
	}
	return string(result)
}
