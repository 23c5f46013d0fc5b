package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// GroupInvite is the invitation handshake record. A partial unique index
// allows at most one pending invite per (group_id, invitee_id); accepted and
// rejected invites are kept for history.
type GroupInvite struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID     uuid.UUID          `gorm:"column:group_id;type:uuid;not null"`
	InviterID   uuid.UUID          `gorm:"column:inviter_id;type:uuid;not null"`
	InviteeID   uuid.UUID          `gorm:"column:invitee_id;type:uuid;not null"`
	Status      enums.InviteStatus `gorm:"column:status;type:invite_status;not null;default:pending"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	RespondedAt *time.Time         `gorm:"column:responded_at;type:timestamptz"`
}
