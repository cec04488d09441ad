// pkg/entity/entity.go
package entity

import (
	"github.com/google/uuid"
)

// ID is a unique identifier for a vessel. IDs are opaque strings: callers may
// supply their own (hull numbers, call signs) or mint one with GenerateID.
type ID string

// GenerateID mints a new unique vessel identifier.
func GenerateID() ID {
	return ID("vessel-" + uuid.NewString()[:8])
}
