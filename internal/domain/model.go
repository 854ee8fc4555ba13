package domain

import "github.com/google/uuid"

// Model is the identity shared by every persisted record.
// A zero ID means the record has not been stored yet.
type Model struct {
	ID uuid.UUID `json:"id" db:"id"`
}

// IsNew reports whether the record still lacks a storage identifier
func (m Model) IsNew() bool {
	return m.ID == uuid.Nil
}

// Equal reports whether both records carry the same identifier
func (m Model) Equal(other Model) bool {
	return m.ID == other.ID
}
