// Package id issues opaque identifiers for rows that are referenced by
// external systems, such as pool members known to the accounts service.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const idBytes = 16

type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
