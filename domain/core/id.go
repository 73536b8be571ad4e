package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	FileID   ID
	BrokerID ID
)

func (id FileID) String() string   { return ID(id).String() }
func (id BrokerID) String() string { return ID(id).String() }

// ParseFileID parses a string into FileID
func ParseFileID(s string) (FileID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("file ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid file ID %q: %w", s, err)
	}
	return FileID(s), nil
}
