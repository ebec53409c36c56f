// Package timestamp normalizes transaction date strings into canonical UTC instants.
package timestamp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CanonicalLayout is the storage form of every instant: second precision with an explicit Z.
// Canonical strings sort lexicographically in time order.
const CanonicalLayout = "2006-01-02T15:04:05Z"

// ErrMalformed is returned for any input outside the accepted grammar.
var ErrMalformed = errors.New("malformed timestamp")

// Sentinel is the watermark of a product with no stored records.
// It is earlier than any real transaction.
var Sentinel = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Normalize parses raw into a UTC instant truncated to the second.
//
// Accepted forms:
//   - 2024-01-03                  (midnight UTC)
//   - 2024-01-03T10:30:00Z        (optionally with .fractional seconds)
//   - 2024-01-03T10:30:00+08:00   (explicit numeric offset)
//
// A date-time without Z or offset is rejected: its zone is ambiguous.
func Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformed)
	}

	if len(s) == len(time.DateOnly) {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
		}
		return t.UTC(), nil
	}

	// time.RFC3339 also accepts fractional seconds. It requires the T separator
	// and either Z or a ±hh:mm offset. It also takes a comma before the
	// fraction, which the grammar does not.
	if strings.ContainsRune(s, ',') {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	return t.UTC().Truncate(time.Second), nil
}

// Format renders t in the canonical storage form.
func Format(t time.Time) string {
	return t.UTC().Format(CanonicalLayout)
}

// ParseCanonical parses a value previously produced by Format.
func ParseCanonical(s string) (time.Time, error) {
	t, err := time.Parse(CanonicalLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored value %q", ErrMalformed, s)
	}
	return t.UTC(), nil
}
