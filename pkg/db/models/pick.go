package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// Pick is a proposed media item. Title/poster/year are a denormalized
// catalog snapshot stored verbatim at creation; (group_id, media_type,
// media_id) is unique so a title appears once per group.
type Pick struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID       `gorm:"column:group_id;type:uuid;not null"`
	SenderID  uuid.UUID       `gorm:"column:sender_id;type:uuid;not null"`
	MediaType enums.MediaType `gorm:"column:media_type;type:media_type;not null"`
	MediaID   string          `gorm:"column:media_id;type:text;not null"`
	Title     string          `gorm:"column:title;type:text;not null"`
	Poster    string          `gorm:"column:poster;type:text;not null;default:''"`
	Year      int             `gorm:"column:year;not null;default:0"`
	Note      string          `gorm:"column:note;type:text;not null;default:''"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
