package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"axiom-backend/internal/middleware"
	"axiom-backend/internal/models"
)

const (
	// Largest accepted JSON chat body.
	maxChatBodyBytes = 1 << 20
	// Room for the text fields of a multipart request on top of the image.
	multipartOverhead = 1 << 20
)

type tutorService interface {
	Ask(ctx context.Context, identity string, req models.ChatRequest) (*models.ChatResponse, error)
}

type ChatHandler struct {
	tutor         tutorService
	maxImageBytes int64
}

func NewChatHandler(tutor tutorService, maxImageBytes int) *ChatHandler {
	return &ChatHandler{tutor: tutor, maxImageBytes: int64(maxImageBytes)}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("VALIDATION_ERROR", "Request too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	h.ask(w, r, req)
}

// ChatWithImage takes the chat fields as multipart form values, history as a
// JSON-encoded string, and an optional "image" file.
func (h *ChatHandler) ChatWithImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("VALIDATION_ERROR", "Request too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart body", r))
		return
	}

	req := models.ChatRequest{
		Topic:      r.FormValue("topic"),
		Difficulty: r.FormValue("difficulty"),
		Message:    r.FormValue("message"),
	}

	if raw := r.FormValue("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.History); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid history", r))
			return
		}
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid image upload", r))
		return
	default:
		defer file.Close()
		// One byte past the limit is enough for the service to reject it.
		data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read image", r))
			return
		}
		req.Image = data
		req.ImageMIME = header.Header.Get("Content-Type")
		if req.ImageMIME == "application/octet-stream" {
			req.ImageMIME = ""
		}
	}

	h.ask(w, r, req)
}

func (h *ChatHandler) ask(w http.ResponseWriter, r *http.Request, req models.ChatRequest) {
	identity := middleware.GetUserID(r.Context()).String()

	resp, err := h.tutor.Ask(r.Context(), identity, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
