package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	DefaultTopic      = "algebra"
	DefaultDifficulty = "easy"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoints. Image data only
// arrives through the multipart endpoint.
type ChatRequest struct {
	Topic      string        `json:"topic"`
	Difficulty string        `json:"difficulty"`
	Message    string        `json:"message"`
	History    []ChatMessage `json:"history"`

	Image     []byte `json:"-"`
	ImageMIME string `json:"-"`
}

// ApplyDefaults fills in topic and difficulty when the client left them blank.
func (r *ChatRequest) ApplyDefaults() {
	if r.Topic == "" {
		r.Topic = DefaultTopic
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
}

// Step is one labeled section of a tutor reply, numbered from 1.
type Step struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ChatResponse is the structured tutor reply.
//
// FinalAnswer and Correctness are reserved; nothing populates them yet.
type ChatResponse struct {
	Reply       string  `json:"reply"`
	Steps       []Step  `json:"steps"`
	FinalAnswer *string `json:"final_answer,omitempty"`
	Correctness *bool   `json:"correctness,omitempty"`
}
