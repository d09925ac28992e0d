package domain

import (
	"time"

	"github.com/google/uuid"
)

// LibraryEntry links a user's shelf to a resolved edition. Ownership of a
// specific edition short-circuits primary-edition selection.
type LibraryEntry struct {
	ID        uuid.UUID
	WorkID    uuid.UUID
	EditionID uuid.UUID
	Owned     bool
	AddedAt   time.Time
}
