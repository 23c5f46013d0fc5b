package models

import (
	"time"

	"github.com/google/uuid"
)

// PickVote is a member's ±1 vote on a pick. One row per (pick_id, user_id);
// changing your vote overwrites the row in place.
type PickVote struct {
	PickID    uuid.UUID `gorm:"column:pick_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Value     int       `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
