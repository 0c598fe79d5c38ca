package storage

import (
	"strings"
	"time"

	"baselinedev/model"
)

// MessageMatch is one message containing a search query.
type MessageMatch struct {
	ConversationID   string
	ConversationName string
	MessageIndex     int
	Role             string
	Preview          string
	Timestamp        time.Time
}

// SearchMessages finds non-system messages containing query,
// case-insensitively.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for i, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
			continue
		}

		matches = append(matches, MessageMatch{
			MessageIndex: i,
			Role:         msg.Role,
			Preview:      preview(msg.Content, 100),
			Timestamp:    msg.Timestamp,
		})
	}

	return matches
}

// SearchAll searches every stored conversation, newest conversation first.
// Unreadable conversations are skipped.
func (s *ConversationStorage) SearchAll(query string) ([]MessageMatch, error) {
	if query == "" {
		return nil, nil
	}

	convs, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []MessageMatch
	for _, meta := range convs {
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, m := range SearchMessages(conv.Messages, query) {
			m.ConversationID = conv.ID
			m.ConversationName = conv.Name
			matches = append(matches, m)
		}
	}

	return matches, nil
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
