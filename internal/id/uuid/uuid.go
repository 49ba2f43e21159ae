// Package uuid implements ID generation for crawl request correlation.
package uuid

import "github.com/google/uuid"

// Generator produces UUIDv4 identifiers.
type Generator struct{}

// New returns a Generator.
func New() Generator {
	return Generator{}
}

// NewID returns a fresh UUID string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
