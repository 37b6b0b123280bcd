// Package persons owns the missing-person report lifecycle: validated
// publishing, lookup, and the daily purge of expired reports.
package persons

import (
	"errors"
	"time"
)

// ErrNotFound is returned for lookups of unknown report ids.
var ErrNotFound = errors.New("person not found")

// ErrInvalidInput wraps every publish validation failure. No partial write
// occurs when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// Person is a published missing-person report. It is never mutated after
// creation; the sweeper deletes it once ExpiresAt has passed.
type Person struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	ImagePath         string    `json:"imagePath"`
	PublishedAt       time.Time `json:"publishedAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
	LastSeenLatitude  *float64  `json:"lastSeenLatitude,omitempty"`
	LastSeenLongitude *float64  `json:"lastSeenLongitude,omitempty"`
}
