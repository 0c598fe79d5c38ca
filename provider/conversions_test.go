package provider

import (
	"testing"

	"baselinedev/model"
	"baselinedev/provider/testutil"

	"google.golang.org/genai"
)

func TestConvertToAnthropicMessages(t *testing.T) {
	tests := []struct {
		name       string
		input      []model.Message
		wantTurns  int
		wantSystem string
	}{
		{
			name:      "no system",
			input:     testutil.TestMessages(),
			wantTurns: 3,
		},
		{
			name:       "system extracted",
			input:      testutil.ConversationWithSystem("You are a Baseline expert."),
			wantTurns:  3,
			wantSystem: "You are a Baseline expert.",
		},
		{
			name:      "empty",
			input:     testutil.EmptyMessages(),
			wantTurns: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, system := convertToAnthropicMessages(tt.input)

			if len(turns) != tt.wantTurns {
				t.Fatalf("expected %d turns, got %d", tt.wantTurns, len(turns))
			}

			if tt.wantSystem == "" {
				if len(system) != 0 {
					t.Errorf("expected no system blocks, got %d", len(system))
				}
				return
			}
			if len(system) != 1 || system[0].Text != tt.wantSystem {
				t.Errorf("system = %+v, want %q", system, tt.wantSystem)
			}
		})
	}
}

func TestConvertToAnthropicMessagesRoles(t *testing.T) {
	turns, _ := convertToAnthropicMessages(testutil.TestMessages())

	wantRoles := []string{"user", "assistant", "user"}
	for i, want := range wantRoles {
		if string(turns[i].Role) != want {
			t.Errorf("turn %d role = %s, want %s", i, turns[i].Role, want)
		}
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	msgs := ConvertToOpenAIMessages(testutil.ConversationWithSystem("sys"))
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil {
		t.Error("expected system message first")
	}
	if msgs[1].OfUser == nil || msgs[2].OfAssistant == nil || msgs[3].OfUser == nil {
		t.Error("turn order or roles not preserved")
	}

	if got := ConvertToOpenAIMessages(testutil.TestMessages()); len(got) != 3 || got[0].OfSystem != nil {
		t.Error("no system message expected without a system turn")
	}
}

func TestBuildGeminiHistory(t *testing.T) {
	tests := []struct {
		name      string
		turns     []model.Message
		wantRoles []string
		wantFirst string
	}{
		{
			name:      "empty history",
			turns:     nil,
			wantRoles: []string{},
		},
		{
			name: "starts with user",
			turns: []model.Message{
				{Role: model.RoleUser, Content: "q1"},
				{Role: model.RoleAssistant, Content: "a1"},
			},
			wantRoles: []string{"user", "model"},
			wantFirst: "q1",
		},
		{
			name: "starts with assistant",
			turns: []model.Message{
				{Role: model.RoleAssistant, Content: "Welcome!"},
				{Role: model.RoleUser, Content: "q1"},
			},
			wantRoles: []string{"user", "model", "model", "user"},
			wantFirst: geminiGreetingUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := buildGeminiHistory(tt.turns)

			if len(history) != len(tt.wantRoles) {
				t.Fatalf("expected %d contents, got %d", len(tt.wantRoles), len(history))
			}
			for i, want := range tt.wantRoles {
				if string(history[i].Role) != want {
					t.Errorf("content %d role = %s, want %s", i, history[i].Role, want)
				}
			}
			if len(history) > 0 {
				if history[0].Role != genai.RoleUser {
					t.Error("history must begin with a user turn")
				}
				if history[0].Parts[0].Text != tt.wantFirst {
					t.Errorf("first text = %q, want %q", history[0].Parts[0].Text, tt.wantFirst)
				}
			}
		})
	}
}

func TestBuildOllamaPrompt(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "Be brief."},
		{Role: model.RoleUser, Content: "Is dialog Baseline?"},
		{Role: model.RoleAssistant, Content: "Yes."},
		{Role: model.RoleUser, Content: "Since when?"},
	}

	want := "System: Be brief.\n\n" +
		"User: Is dialog Baseline?\n\n" +
		"Assistant: Yes.\n\n" +
		"User: Since when?\n\n" +
		"Assistant:"

	if got := buildOllamaPrompt(messages); got != want {
		t.Errorf("buildOllamaPrompt() =\n%q\nwant\n%q", got, want)
	}

	if got := buildOllamaPrompt(nil); got != "Assistant:" {
		t.Errorf("empty prompt = %q", got)
	}
}
