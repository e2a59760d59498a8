package tutor

import (
	"fmt"

	"axiom-backend/internal/models"
)

const SystemPrompt = `You are a friendly math tutor for middle and high school students.
ALWAYS:
- Solve problems step by step.
- Label each step clearly (Step 1, Step 2, ...).
- Ask short check questions occasionally.
- Prefer hints before giving the full solution, unless the student asks directly.
- Use LaTeX-style math notation inside $...$.
- Be encouraging and patient.
- Refuse unsafe or irrelevant requests.`

const Temperature float32 = 0.3

const (
	MaxTokensText      = 800
	MaxTokensWithImage = 1000
	DefaultImageMIME   = "image/jpeg"
)

// BuildPrompt assembles the ordered model input: the tutoring persona, the
// difficulty-bounded history, then a single user turn carrying topic,
// difficulty and the already scrubbed message (plus the image, if any).
func BuildPrompt(req models.ChatRequest, message string) models.Prompt {
	history := SelectHistory(req.History, req.Difficulty)

	msgs := make([]models.PromptMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, models.PromptMessage{Role: m.Role, Content: m.Content})
	}

	user := models.PromptMessage{Role: models.RoleUser}
	maxTokens := MaxTokensText
	if len(req.Image) > 0 {
		user.Content = fmt.Sprintf("Topic: %s | Difficulty: %s\n\nQuestion: %s", req.Topic, req.Difficulty, message)
		user.Image = req.Image
		user.ImageMIME = req.ImageMIME
		if user.ImageMIME == "" {
			user.ImageMIME = DefaultImageMIME
		}
		maxTokens = MaxTokensWithImage
	} else {
		user.Content = fmt.Sprintf("Topic: %s | Difficulty: %s\n\n%s", req.Topic, req.Difficulty, message)
	}
	msgs = append(msgs, user)

	return models.Prompt{
		SystemPrompt: SystemPrompt,
		Messages:     msgs,
		Temperature:  Temperature,
		MaxTokens:    maxTokens,
	}
}
