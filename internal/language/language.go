package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is used when a job does not declare a caption language.
const Default = "en"

// Normalize canonicalizes a BCP 47 tag ("EN-us" becomes "en-US").
// Empty input yields Default; unparseable input returns an error.
func Normalize(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Default, nil
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse language tag %q: %w", trimmed, err)
	}
	return tag.String(), nil
}

// DisplayName returns the English name for a language tag, or "Unknown"
// when the tag cannot be parsed.
func DisplayName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "Unknown"
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return "Unknown"
	}
	return name
}
