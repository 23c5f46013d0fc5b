package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// Message is an immutable chat entry. Mention tokens stay in the body as
// typed; the shared-media columns hold an optional denormalized catalog
// snapshot. ReplyToID always references an original message in the same
// group, never another reply.
type Message struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID  `gorm:"column:group_id;type:uuid;not null"`
	SenderID  uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Body      string     `gorm:"column:body;type:text;not null;default:''"`
	ReplyToID *uuid.UUID `gorm:"column:reply_to_id;type:uuid"`

	SharedMediaType *enums.MediaType `gorm:"column:shared_media_type;type:media_type"`
	SharedMediaID   *string          `gorm:"column:shared_media_id;type:text"`
	SharedTitle     *string          `gorm:"column:shared_title;type:text"`
	SharedPoster    *string          `gorm:"column:shared_poster;type:text"`
	SharedYear      *int             `gorm:"column:shared_year"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
