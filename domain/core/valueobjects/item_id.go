package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ItemID identifies a clothing item. Stored ids are UUID v4 strings, but
// lookups accept any non-empty value so that records written by other
// clients remain reachable.
type ItemID struct {
	value string
}

var ErrEmptyItemID = errors.New("item ID cannot be empty")

// NewItemID creates a new random ItemID
func NewItemID() ItemID {
	return ItemID{value: uuid.New().String()}
}

// ParseItemID creates an ItemID from a path or query value.
func ParseItemID(id string) (ItemID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ItemID{}, ErrEmptyItemID
	}
	return ItemID{value: id}, nil
}

// String returns the string representation of the ItemID
func (id ItemID) String() string {
	return id.value
}

// Equals checks if two ItemIDs are equal
func (id ItemID) Equals(other ItemID) bool {
	return id.value == other.value
}

// IsZero checks if the ItemID is the zero value
func (id ItemID) IsZero() bool {
	return id.value == ""
}

// IsUUID reports whether the id was generated by NewItemID or an equivalent
// UUID source.
func (id ItemID) IsUUID() bool {
	_, err := uuid.Parse(id.value)
	return err == nil
}
