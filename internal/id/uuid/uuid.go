// Package uuid generates request identifiers.
package uuid

import "github.com/google/uuid"

// NewString returns a time-ordered UUIDv7, or a random UUIDv4 when a v7
// cannot be produced.
func NewString() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
