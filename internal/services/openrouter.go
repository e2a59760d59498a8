package services

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"axiom-backend/internal/models"
)

const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient is a TutorModel backed by any OpenAI-compatible chat
// completions endpoint, OpenRouter by default.
type OpenRouterClient struct {
	api   *openai.Client
	model string
}

func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	return NewOpenRouterClientWithBaseURL(apiKey, model, OpenRouterBaseURL)
}

func NewOpenRouterClientWithBaseURL(apiKey, model, baseURL string) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenRouterClient{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *OpenRouterClient) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(prompt),
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(prompt models.Prompt) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(prompt.Messages)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt.SystemPrompt,
	})

	for _, m := range prompt.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}

		if len(m.Image) == 0 {
			out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
			continue
		}

		dataURL := fmt.Sprintf("data:%s;base64,%s", m.ImageMIME, base64.StdEncoding.EncodeToString(m.Image))
		out = append(out, openai.ChatCompletionMessage{
			Role: role,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: m.Content},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		})
	}
	return out
}
