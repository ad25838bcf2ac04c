package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is an opaque identifier. Fresh values are UUIDv7, so they sort by creation time.
type ID string

func NewID() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return ID(uuid.NewString())
	}
	return ID(v7.String())
}

func (id ID) String() string { return string(id) }
func (id ID) IsEmpty() bool  { return id == "" }

// RunID identifies one augmentation run (a batch of inputs through one recipe).
type RunID ID

func NewRunID() RunID           { return RunID(NewID()) }
func (id RunID) String() string { return ID(id).String() }
func (id RunID) IsEmpty() bool  { return ID(id).IsEmpty() }

// ParseRunID accepts a UUID with optional surrounding whitespace.
func ParseRunID(raw string) (RunID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", trimmed, err)
	}
	return RunID(trimmed), nil
}
