package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// MessageReaction is one user's emoji reaction on one message. The triple
// (message_id, user_id, value) is unique; toggling deletes or inserts the
// row. Distinct values from the same user stack.
type MessageReaction struct {
	MessageID uuid.UUID           `gorm:"column:message_id;type:uuid;primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;primaryKey"`
	Value     enums.ReactionValue `gorm:"column:value;type:text;primaryKey"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
