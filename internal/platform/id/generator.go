package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for persisted rows.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) UUIDs in canonical string form.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
