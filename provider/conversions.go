package provider

import (
	"strings"

	"baselinedev/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// convertToAnthropicMessages splits system messages into system blocks and
// maps the remaining turns 1:1 in order.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	system, turns := model.SplitSystem(messages)

	var systemBlocks []anthropic.TextBlockParam
	if system != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: system})
	}

	anthropicMsgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, msg := range turns {
		switch msg.Role {
		case model.RoleAssistant:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)
		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// ConvertToOpenAIMessages maps messages to chat completion params. The
// system instruction, if any, becomes the first message.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	system, turns := model.SplitSystem(messages)

	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}

	for _, msg := range turns {
		switch msg.Role {
		case model.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}

	return result
}

// buildGeminiHistory converts prior turns to Gemini contents. Gemini rejects
// a history that opens with a model turn, so a greeting pair is prepended
// when the first turn is not from the user.
func buildGeminiHistory(turns []model.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns)+2)

	if len(turns) > 0 && turns[0].Role != model.RoleUser {
		history = append(history,
			&genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: geminiGreetingUser}}},
			&genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: geminiGreetingModel}}},
		)
	}

	for _, msg := range turns {
		role := genai.RoleModel
		if msg.Role == model.RoleUser {
			role = genai.RoleUser
		}
		history = append(history, &genai.Content{Role: role, Parts: []*genai.Part{{Text: msg.Content}}})
	}

	return history
}

// buildOllamaPrompt flattens the conversation into role-tagged blocks ending
// with an "Assistant:" cue.
func buildOllamaPrompt(messages []model.Message) string {
	var sb strings.Builder

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			sb.WriteString("System: ")
		case model.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("User: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Assistant:")
	return sb.String()
}
