package validation

import (
	"crypto/rand"
	"strings"
)

// Join codes avoid characters that are easy to misread (0/O, 1/I).
const (
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	JoinCodeLength   = 6
)

// NormalizeJoinCode trims and upper-cases a code typed by a student.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ValidJoinCode(code string) bool {
	code = NormalizeJoinCode(code)
	if len(code) != JoinCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(JoinCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// NewJoinCode returns a random code drawn from JoinCodeAlphabet.
func NewJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = JoinCodeAlphabet[int(b)%len(JoinCodeAlphabet)]
	}
	return string(buf), nil
}
