package model

import "github.com/oklog/ulid/v2"

// NewEntryID returns a fresh identifier for an experience, education or skill
// entry. Identifiers are monotonic within the process and never reused.
func NewEntryID() string {
	return ulid.Make().String()
}
