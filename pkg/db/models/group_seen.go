package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupSeen records when a member last loaded a group's messages or picks.
// Only used to derive the unseen badge; absence means no backlog badge.
type GroupSeen struct {
	GroupID    uuid.UUID `gorm:"column:group_id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;type:timestamptz;not null"`
}
