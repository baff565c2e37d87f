package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 100

// NormalizeName trims a display name and checks its length in characters.
// Used for user and group names.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return "", errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", fmt.Errorf("name is too long (max %d characters)", MaxNameLength)
	}

	return trimmed, nil
}
