package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"baselinedev/model"

	"github.com/google/uuid"
)

// Conversation is a persisted multi-turn chat. The router never holds
// history; the CLI loads a conversation, appends turns and saves it back.
type Conversation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Backend   string          `json:"backend"`
	Model     string          `json:"model"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []model.Message `json:"messages"`
}

// ConversationMetadata is a Conversation without its messages, for listing.
type ConversationMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Backend      string    `json:"backend"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Append adds a turn stamped with the current time.
func (c *Conversation) Append(role, content string) {
	c.Messages = append(c.Messages, model.Message{Role: role, Content: content, Timestamp: time.Now()})
}

// ConversationStorage keeps one JSON file per conversation.
type ConversationStorage struct {
	dir string
}

func NewConversationStorage(dataDir string) (*ConversationStorage, error) {
	dir := filepath.Join(dataDir, "conversations")

	// 0700: conversations may contain source code
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	return &ConversationStorage{dir: dir}, nil
}

func (s *ConversationStorage) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes conv, assigning an ID and timestamps as needed.
func (s *ConversationStorage) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}
	if conv.Name == "" {
		conv.Name = GenerateConversationName(firstUserMessage(conv.Messages))
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := os.WriteFile(s.path(conv.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}

	return nil
}

func (s *ConversationStorage) Load(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conv, nil
}

// List returns metadata for all conversations, newest first.
func (s *ConversationStorage) List() ([]ConversationMetadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	var convs []ConversationMetadata

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // corrupted
		}

		convs = append(convs, ConversationMetadata{
			ID:           conv.ID,
			Name:         conv.Name,
			Backend:      conv.Backend,
			Model:        conv.Model,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	return convs, nil
}

func (s *ConversationStorage) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("failed to delete conversation file: %w", err)
	}
	return nil
}

func (s *ConversationStorage) currentPath() string {
	return filepath.Join(filepath.Dir(s.dir), "current_conversation.id")
}

// SaveCurrentID records the conversation the next chat continues.
func (s *ConversationStorage) SaveCurrentID(id string) error {
	return os.WriteFile(s.currentPath(), []byte(id), 0600)
}

func (s *ConversationStorage) LoadCurrentID() (string, error) {
	data, err := os.ReadFile(s.currentPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearCurrentID makes the next chat start a new conversation.
func (s *ConversationStorage) ClearCurrentID() error {
	err := os.Remove(s.currentPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *ConversationStorage) Rename(id, name string) error {
	conv, err := s.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	conv.Name = name

	if err := s.Save(conv); err != nil {
		return fmt.Errorf("failed to save renamed conversation: %w", err)
	}
	return nil
}

// ExportToJSON writes the conversation to exportPath.
func (s *ConversationStorage) ExportToJSON(id, exportPath string) error {
	conv, err := s.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// GenerateConversationName derives a name from the first user message.
func GenerateConversationName(firstMessage string) string {
	name := strings.Join(strings.Fields(firstMessage), " ")
	if name == "" {
		return fmt.Sprintf("Chat %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	if runes := []rune(name); len(runes) > 30 {
		name = string(runes[:30]) + "..."
	}
	return name
}

func firstUserMessage(messages []model.Message) string {
	for _, m := range messages {
		if m.Role == model.RoleUser {
			return m.Content
		}
	}
	return ""
}
