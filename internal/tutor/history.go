package tutor

import "axiom-backend/internal/models"

const (
	easyHistoryLimit    = 12
	defaultHistoryLimit = 6
	hardHistoryLimit    = 2
)

// HistoryLimit is the number of most recent messages kept for a difficulty.
// Harder problems get less context so the model focuses on the question.
func HistoryLimit(difficulty string) int {
	switch difficulty {
	case "easy":
		return easyHistoryLimit
	case "hard":
		return hardHistoryLimit
	default:
		return defaultHistoryLimit
	}
}

// SelectHistory returns a copy of the trailing window of history for the
// given difficulty, oldest first. The input slice is never modified.
func SelectHistory(history []models.ChatMessage, difficulty string) []models.ChatMessage {
	limit := HistoryLimit(difficulty)
	start := 0
	if len(history) > limit {
		start = len(history) - limit
	}
	out := make([]models.ChatMessage, len(history)-start)
	copy(out, history[start:])
	return out
}
