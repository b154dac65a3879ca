// Package id provides the UUIDv7 keys of submissions, stores documents,
// ledger entries, outbox rows and audit rows. v7 ids sort by creation time.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

type ID = uuid.UUID

// New returns a UUIDv7, falling back to v4 if the clock source fails.
func New() ID {
	if v, err := uuid.NewV7(); err == nil {
		return v
	}
	return uuid.New()
}

// Parse accepts the canonical textual form only.
func Parse(s string) (ID, error) {
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return uuid.Parse(s)
}

// MustParse is for tests and constants.
func MustParse(s string) ID { return uuid.MustParse(s) }

func Nil() ID { return uuid.Nil }

func IsNil(v ID) bool { return v == uuid.Nil }
