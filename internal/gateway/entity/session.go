package entity

import (
	"strings"

	"github.com/google/uuid"
)

// SessionID identifies one browser. It scopes the optimizer machine and the
// selected API key.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func NormalizeSessionID(raw string) SessionID {
	return SessionID(strings.TrimSpace(raw))
}

func (id SessionID) String() string {
	return strings.TrimSpace(string(id))
}

func (id SessionID) IsZero() bool {
	return id.String() == ""
}

// Valid reports whether id looks like one we issued.
func (id SessionID) Valid() bool {
	_, err := uuid.Parse(id.String())
	return err == nil
}
