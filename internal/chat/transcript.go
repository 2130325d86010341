// Package chat holds the in-memory conversation with the assistant.
package chat

import (
	"crypto/rand"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SystemPrompt is always the first message of every transcript.
const SystemPrompt = "You are a helpful assistant for L'Oréal product advice."

// Role tags who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. ID and CreatedAt are local bookkeeping
// and are not sent to the completion service.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// Transcript is an append-only message history rooted at SystemPrompt.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// NewTranscript returns a transcript holding only the system prompt.
func NewTranscript() *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, newMessage(RoleSystem, SystemPrompt))
	return t
}

// Append adds a message and returns it.
func (t *Transcript) Append(role Role, content string) Message {
	m := newMessage(role, content)
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
	return m
}

// Messages returns a copy of every message, system prompt first.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// Visible returns the user and assistant messages in order.
func (t *Transcript) Visible() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	visible := make([]Message, 0, len(t.messages))
	for _, m := range t.messages {
		if m.Role != RoleSystem {
			visible = append(visible, m)
		}
	}
	return visible
}

// Len returns the number of messages including the system prompt.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func newMessage(role Role, content string) Message {
	now := time.Now()
	return Message{
		ID:        newID(now),
		Role:      role,
		Content:   content,
		CreatedAt: now.Unix(),
	}
}

// newID generates a ULID. Falls back to a timestamp-only ULID if entropy is unavailable.
func newID(now time.Time) string {
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return ulid.MustNew(ulid.Timestamp(now), nil).String()
	}
	return id.String()
}
