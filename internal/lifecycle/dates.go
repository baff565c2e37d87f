package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Clock returns the current instant. Engines take one so tests can pin time.
type Clock func() time.Time

const dateLayout = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, which is
// read as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, NewValidationError(fmt.Errorf("%w: empty", ErrInvalidDate))
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(dateLayout, s)
	if err == nil {
		return t, nil
	}

	return time.Time{}, NewValidationError(fmt.Errorf("%w: %q", ErrInvalidDate, s))
}

// dueBy reports whether start is at or before now.
func dueBy(start, now time.Time) bool {
	return !start.After(now)
}
