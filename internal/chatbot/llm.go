package chatbot

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

const defaultModel = "gpt-4o-mini"

// OpenAIAssistant answers chat messages with the OpenAI chat completion API
type OpenAIAssistant struct {
	client      *openai.Client
	model       string
	temperature float32
	maxHistory  int
}

// NewOpenAIAssistant creates an assistant from chatbot configuration
func NewOpenAIAssistant(cfg *config.ChatbotConfig) *OpenAIAssistant {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIAssistant{
		client:      openai.NewClient(cfg.OpenAIAPIKey),
		model:       model,
		temperature: cfg.Temperature,
		maxHistory:  cfg.MaxHistory,
	}
}

// Complete sends the role's system prompt, the recent history and message
// and returns the model's answer
func (a *OpenAIAssistant) Complete(ctx context.Context, role types.Role, history []types.ChatMessage, message string) (string, error) {
	if a.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    buildMessages(scriptFor(role).systemPrompt, trimHistory(history, a.maxHistory), message),
		Temperature: a.temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(systemPrompt string, history []types.ChatMessage, message string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})

	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// clients never get to inject system turns
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}

func trimHistory(history []types.ChatMessage, max int) []types.ChatMessage {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
