package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// NormalizeEmail lower-cases and trims an address and checks it parses as
// RFC 5322. Addresses over 254 bytes are refused.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		return "", errors.New("email address is required")
	}
	if len(email) > 254 {
		return "", errors.New("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("invalid email address format")
	}

	return email, nil
}
