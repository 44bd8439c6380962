package model

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day formatted as YYYY-MM-DD.
// Valid dates order lexicographically, so comparisons are plain string comparisons.
type Date string

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date(s), nil
}

// ParseOptionalDate treats "", "none" and "null" as unset.
func ParseOptionalDate(s string) (*Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (d Date) String() string { return string(d) }

func (d Date) Before(o Date) bool { return d < o }

func (d Date) After(o Date) bool { return d > o }

// DatePtr returns a pointer to a copy of d.
func DatePtr(d Date) *Date { return &d }

// SameDate compares two optional dates.
func SameDate(a, b *Date) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
