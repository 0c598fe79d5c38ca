package model

import (
	"strings"
	"time"
)

// Role values accepted in a Message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a chat message in the conversation
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// SplitSystem separates system messages from conversational turns.
// Backends take the system instruction out-of-band; if more than one system
// message is present their contents are joined with a blank line.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}

	return strings.Join(system, "\n\n"), turns
}
