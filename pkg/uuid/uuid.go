// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package uuid wraps identifier generation so the rest of the codebase never
chooses a UUID version ad hoc.

Two kinds of identifiers exist in this system and they have different needs:

  - Database keys want time-ordered values (v7) for index locality.
  - Opaque credentials want pure randomness (v4) so nothing about issue
    time leaks through the token itself.
*/
package uuid

import guuid "github.com/google/uuid"

// New returns a time-sortable UUIDv7 string for use as a primary key.
func New() string {
	id, err := guuid.NewV7()
	if err != nil {
		// v7 only fails if the entropy source does; fall back to v4
		// rather than aborting the write path.
		return guuid.NewString()
	}
	return id.String()
}

// NewToken returns a fully random UUIDv4 string for use as an opaque
// single-use credential (122 bits of entropy).
func NewToken() string {
	return guuid.NewString()
}

// IsValid reports whether the value parses as any canonical UUID.
func IsValid(value string) bool {
	_, err := guuid.Parse(value)
	return err == nil
}
