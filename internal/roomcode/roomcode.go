package roomcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet holds the characters a room code may contain.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of characters in a room code.
const Length = 5

// MaxAttempts bounds collision retries before Unique gives up.
const MaxAttempts = 1000

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles room code generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource. A nil
// source uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a room code using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a room code using the generator's RandSource
func (g *Generator) Generate() string {
	code := make([]byte, Length)
	for i := range code {
		code[i] = Alphabet[g.intN(len(Alphabet))]
	}
	return string(code)
}

// Unique generates codes until inUse reports one as free.
func (g *Generator) Unique(inUse func(string) bool) (string, error) {
	for range MaxAttempts {
		code := g.Generate()
		if !inUse(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free room code after %d attempts", MaxAttempts)
}

func (g *Generator) intN(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return int(v.Int64())
}

// Validate checks that code is exactly Length characters from Alphabet.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return fmt.Errorf("invalid character %q at position %d", c, i)
		}
	}

	return nil
}
