package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// GroupMembership links a user with a group and captures their role. The
// (group_id, user_id) pair is unique; concurrent joins race on that
// constraint rather than on an application lock.
type GroupMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID        `gorm:"column:group_id;type:uuid;not null"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null"`
	Role      enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
