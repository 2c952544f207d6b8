package common

import (
	"fmt"
	"strings"
	"time"
)

// ParseDueDate accepts a calendar date in DateLayout or a full RFC 3339
// timestamp. Dates are taken as midnight UTC.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid due date %q", ErrorValidation, s)
	}
	return t.UTC(), nil
}
