package model

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle is the soft-delete state shared by every entity. Reads only see Active rows.
type Lifecycle string

const (
	LifecycleActive    Lifecycle = "active"
	LifecycleCancelled Lifecycle = "cancelled"
)

// SystemActor attributes changes made without a caller identity.
var SystemActor = uuid.Nil

// Audit holds who created and last changed a row.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uuid.UUID `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// Touch stamps the audit fields before a row is persisted.
func (a *Audit) Touch(actor uuid.UUID, now time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.CreatedBy = actor
	}
	a.UpdatedAt = now
	a.UpdatedBy = actor
}
