package tutor

import (
	"strings"

	"axiom-backend/internal/models"
)

// ParseSteps splits a model reply into numbered steps.
//
// Any line whose trimmed, lower-cased form starts with "step" closes the
// current buffer and opens a new one. Lines before the first marker form their
// own leading step, so a reply without markers becomes a single step.
func ParseSteps(text string) []models.Step {
	steps := []models.Step{}
	if text == "" {
		return steps
	}

	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		steps = append(steps, models.Step{
			Index: len(steps) + 1,
			Text:  strings.TrimSpace(strings.Join(current, " ")),
		})
	}

	for _, line := range splitLines(text) {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "step") {
			flush()
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	flush()

	return steps
}

// splitLines breaks on \n, \r\n and \r and drops the empty tail left by a
// trailing line break.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
