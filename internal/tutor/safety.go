package tutor

import (
	"regexp"
	"strings"
)

var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[+\-*/=^√]`),
	regexp.MustCompile(`x`),
	regexp.MustCompile(`y`),
	regexp.MustCompile(`solve`),
	regexp.MustCompile(`calculate`),
	regexp.MustCompile(`derivative`),
	regexp.MustCompile(`integral`),
	regexp.MustCompile(`equation`),
}

var injectionKeywords = []string{"ignore", "system prompt", "bypass", "admin", "password"}

// IsSafeMathQuery reports whether text looks like math and carries none of the
// blocked injection phrases. Matching is case-insensitive substring/regex only,
// so "admin" rejects a message even when it is otherwise mathematical.
func IsSafeMathQuery(text string) bool {
	lower := strings.ToLower(text)
	return hasMath(lower) && !hasInjection(lower)
}

func hasMath(lower string) bool {
	for _, re := range mathPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func hasInjection(lower string) bool {
	for _, kw := range injectionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
