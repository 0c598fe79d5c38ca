package testutil

import (
	"time"

	"baselinedev/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "Is CSS nesting Baseline?",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleAssistant,
			Content:   "Yes, CSS nesting is newly available.",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleUser,
			Content:   "Can I drop the Sass build step?",
			Timestamp: time.Now(),
		},
	}
}

// ConversationWithSystem prepends a system message to TestMessages.
func ConversationWithSystem(system string) []model.Message {
	return append([]model.Message{{Role: model.RoleSystem, Content: system}}, TestMessages()...)
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// EmptyMessages returns an empty message slice for edge case testing
func EmptyMessages() []model.Message {
	return []model.Message{}
}
