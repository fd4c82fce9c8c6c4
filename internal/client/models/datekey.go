package models

import (
	"errors"
	"time"
)

// DateKeyLayout is the reference layout behind every dateKey. Go layouts are
// locale-independent, so the same instant always yields the same key.
const DateKeyLayout = "20060102"

var ErrInvalidDateKey = errors.New("dateKey must be a YYYYMMDD calendar date")

// DateKey returns the canonical YYYYMMDD key for the calendar day of t, taken
// in the location carried by t. It is the only place a dateKey is produced.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey turns a key back into midnight UTC of that day.
func ParseDateKey(key string) (time.Time, error) {
	if len(key) != len(DateKeyLayout) {
		return time.Time{}, ErrInvalidDateKey
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return time.Time{}, ErrInvalidDateKey
		}
	}
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDateKey
	}
	return t, nil
}

// ValidDateKey reports whether key is a real calendar day in YYYYMMDD form.
func ValidDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}
