package usecase

import (
	"regexp"
	"strings"
)

// The model sometimes leaks structured formatting despite the persona prompt.
// The spoken-answer contract is that the caller never sees raw JSON or code
// fences, enforced here rather than trusted to the prompt alone.
var (
	fencedBlockRe    = regexp.MustCompile("(?s)```(?:json)?\\s*.*?```")
	jsonObjectLineRe = regexp.MustCompile(`(?m)^\s*\{.*\}\s*$`)
)

// SanitizeAnswer strips fenced code blocks and standalone line-start-to-end
// JSON objects from a generated answer, then trims whitespace. Running it on
// an already-clean answer returns the string unchanged.
func SanitizeAnswer(answer string) string {
	cleaned := fencedBlockRe.ReplaceAllString(answer, "")
	cleaned = jsonObjectLineRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
