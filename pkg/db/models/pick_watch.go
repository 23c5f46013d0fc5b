package models

import (
	"time"

	"github.com/google/uuid"
)

// PickWatch marks that a member has watched a pick. Inserted once per
// (pick_id, user_id), never removed.
type PickWatch struct {
	PickID    uuid.UUID `gorm:"column:pick_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
