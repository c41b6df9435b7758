package licenses

import (
	"errors"
	"time"
)

const DefaultOwner = "Unknown"

var (
	ErrNotFound     = errors.New("license not found")
	ErrDuplicateKey = errors.New("license key already exists")
	ErrInvalidInput = errors.New("invalid license input")
)

type License struct {
	ID        string
	Key       string
	Owner     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
	Note      string
}

// Expired reports whether the license expiry is strictly before now.
func (l License) Expired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}

// Active reports whether the license is neither revoked nor expired at now.
func (l License) Active(now time.Time) bool {
	return !l.Revoked && !l.Expired(now)
}
