package services

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"axiom-backend/internal/logger"
	"axiom-backend/internal/models"
	"axiom-backend/internal/tutor"
)

const MaxMessageChars = 2000

// TutorModel is a language-model provider. Implementations must be safe for
// concurrent use.
type TutorModel interface {
	Generate(ctx context.Context, prompt models.Prompt) (string, error)
}

type rateLimiter interface {
	Allow(key string) bool
}

// TutorService runs every chat request through the guardrail pipeline before
// and after the model call.
type TutorService struct {
	limiter       rateLimiter
	model         TutorModel
	log           *logger.Logger
	maxImageBytes int
}

func NewTutorService(limiter rateLimiter, model TutorModel, log *logger.Logger, maxImageBytes int) *TutorService {
	return &TutorService{
		limiter:       limiter,
		model:         model,
		log:           log,
		maxImageBytes: maxImageBytes,
	}
}

// Ask answers one chat request for the caller named by identity. The quota is
// charged before anything else is looked at, so rejected requests still count.
func (s *TutorService) Ask(ctx context.Context, identity string, req models.ChatRequest) (*models.ChatResponse, error) {
	if !s.limiter.Allow(identity) {
		return nil, &RateLimitError{Message: "You are solving math problems too fast! Please wait a minute."}
	}

	req.ApplyDefaults()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ValidationError{Message: "Empty message"}
	}
	if utf8.RuneCountInString(message) > MaxMessageChars {
		return nil, &ValidationError{Message: "Message too long"}
	}

	if len(req.Image) > 0 {
		if err := s.checkImage(&req); err != nil {
			return nil, err
		}
	}

	if !tutor.IsSafeMathQuery(message) {
		return nil, &UnsafeQueryError{Message: "I can only assist with math questions. Please rephrase."}
	}

	prompt := tutor.BuildPrompt(req, tutor.ScrubPII(message))

	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		s.log.Error("tutor model call failed", "identity", identity, "error", err)
		return nil, &UpstreamError{Err: err}
	}

	reply := strings.TrimSpace(raw)
	return &models.ChatResponse{
		Reply: reply,
		Steps: tutor.ParseSteps(reply),
	}, nil
}

func (s *TutorService) checkImage(req *models.ChatRequest) error {
	if len(req.Image) > s.maxImageBytes {
		return &ValidationError{Message: "Image too large", Fields: map[string]string{"image": "Image exceeds the upload size limit"}}
	}

	if req.ImageMIME == "" {
		req.ImageMIME = http.DetectContentType(req.Image)
	}
	// DetectContentType may append parameters; the providers want the bare type.
	if i := strings.IndexByte(req.ImageMIME, ';'); i >= 0 {
		req.ImageMIME = strings.TrimSpace(req.ImageMIME[:i])
	}
	if !strings.HasPrefix(req.ImageMIME, "image/") {
		return &ValidationError{Message: "Unsupported image type", Fields: map[string]string{"image": "File must be an image"}}
	}
	return nil
}
