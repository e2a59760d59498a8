package tutor

import "regexp"

const (
	EmailRedacted = "[EMAIL_REDACTED]"
	PhoneRedacted = "[PHONE_REDACTED]"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	phonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

// ScrubPII replaces email addresses and North-American style phone numbers
// with fixed markers. Emails go first so digits inside an address never reach
// the phone pattern. The markers match neither pattern, so ScrubPII is
// idempotent.
func ScrubPII(text string) string {
	text = emailPattern.ReplaceAllLiteralString(text, EmailRedacted)
	text = phonePattern.ReplaceAllLiteralString(text, PhoneRedacted)
	return text
}
