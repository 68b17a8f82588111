package app

import (
	"strings"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// newTicketNumber returns the first eight hex digits of a random UUID,
// upper-cased. Collisions are caught by the ticket store.
func newTicketNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
