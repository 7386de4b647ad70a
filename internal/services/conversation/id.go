package conversation

import "github.com/google/uuid"

// newID returns a time-ordered identifier (UUIDv7: millisecond timestamp
// followed by random bits). Uniqueness is probabilistic.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
