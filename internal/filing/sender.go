package filing

import (
	"strings"
	"time"
)

// SenderEntry is one persistent sender→folder association. Email is the sole
// identity and is stored normalized; renaming the display name never changes
// the key.
type SenderEntry struct {
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	FolderPath string    `json:"folder_path"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SenderLookup is the read side of the sender directory the filing core
// consumes. Implementations live outside the core (sqlite-backed in this
// repository).
type SenderLookup interface {
	// Get returns the entry for a normalized email, or nil when unknown.
	Get(email string) (*SenderEntry, error)
	// ListAll returns every entry in a stable order for a given store state.
	ListAll() ([]SenderEntry, error)
}

// SenderStore extends SenderLookup with the single mutation the orchestrator
// performs after a successful filing decision.
type SenderStore interface {
	SenderLookup
	// Upsert overwrites any existing entry for the entry's normalized email.
	Upsert(entry SenderEntry) error
}

// NormalizeEmail canonicalizes an address for use as a directory key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
