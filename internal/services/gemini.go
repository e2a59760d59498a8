package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"axiom-backend/internal/models"
)

// GeminiService is the Google Gemini TutorModel.
type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // caps in-flight upstream calls
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a slot is free or ctx is done.
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	if len(prompt.Messages) == 0 {
		return "", fmt.Errorf("prompt has no messages")
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	// A fresh model per call: generation settings differ between text and
	// image requests, and GenerativeModel is not safe to mutate concurrently.
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(prompt.Temperature)
	model.SetMaxOutputTokens(int32(prompt.MaxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.SystemPrompt)}}

	history, last := toGeminiContents(prompt.Messages)

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini generation error: %w", err)
	}

	return extractText(resp), nil
}

// toGeminiContents converts the prompt turns into chat history plus the final
// turn to send. Gemini names the assistant role "model", adjacent turns with
// the same role are merged into one content, and history must open with a
// user turn, so leading model turns are dropped.
func toGeminiContents(msgs []models.PromptMessage) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	for _, m := range msgs {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}

		parts := []genai.Part{genai.Text(m.Content)}
		if len(m.Image) > 0 {
			parts = append(parts, genai.Blob{MIMEType: m.ImageMIME, Data: m.Image})
		}

		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	last := contents[len(contents)-1]
	history := contents[:len(contents)-1]
	for len(history) > 0 && history[0].Role == "model" {
		history = history[1:]
	}
	return history, last
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
