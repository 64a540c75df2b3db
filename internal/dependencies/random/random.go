package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// TokenAlphabet is the character set used for session tokens
const TokenAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// UUID returns a new random (version 4) UUID
	UUID() uuid.UUID

	// Token returns a random string of the given length drawn from TokenAlphabet
	Token(length int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) UUID() uuid.UUID {
	return uuid.New()
}

func (r *CryptoRandom) Token(length int) string {
	if length <= 0 {
		return ""
	}
	max := big.NewInt(int64(len(TokenAlphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			n = big.NewInt(0)
		}
		result[i] = TokenAlphabet[n.Int64()]
	}
	return string(result)
}
