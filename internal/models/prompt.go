package models

// Prompt is the provider-neutral request handed to a tutor model.
type Prompt struct {
	SystemPrompt string
	Messages     []PromptMessage
	Temperature  float32
	MaxTokens    int
}

// PromptMessage is one ordered turn. Image is only set on the final user turn
// of image-bearing requests.
type PromptMessage struct {
	Role      string
	Content   string
	Image     []byte
	ImageMIME string
}
