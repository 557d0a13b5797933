// Package history holds the ordered conversation for a single session.
package history

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one role-tagged conversation entry.
type Message struct {
	Role    Role
	Content string
}

// Store is an append-only conversation seeded with a system message.
// It is owned by exactly one session and is not safe for concurrent use.
type Store struct {
	id       string
	system   Message
	messages []Message
}

// New creates a Store whose first message is the given system instruction.
// Each store gets a UUIDv7 identifier.
func New(systemPrompt string) *Store {
	s := &Store{
		id:     uuid.Must(uuid.NewV7()).String(),
		system: Message{Role: RoleSystem, Content: systemPrompt},
	}
	s.Reset()
	return s
}

// ID returns the session identifier of the store.
func (s *Store) ID() string {
	return s.id
}

// Append adds a user or assistant message to the end of the history.
func (s *Store) Append(role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid message role: %q", role)
	}
	if role == RoleSystem {
		return fmt.Errorf("system message can only be set at creation or reset")
	}
	s.messages = append(s.messages, Message{Role: role, Content: content})
	return nil
}

// Snapshot returns a copy of the full ordered history.
func (s *Store) Snapshot() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset replaces the history with the original system message.
func (s *Store) Reset() {
	s.messages = []Message{s.system}
}

// Len returns the number of messages, system message included.
func (s *Store) Len() int {
	return len(s.messages)
}

// System returns the seeded system message.
func (s *Store) System() Message {
	return s.system
}
