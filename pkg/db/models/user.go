package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Handle is the unique short name mention
// tokens resolve against.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email;type:citext;not null;uniqueIndex"`
	Handle       string     `gorm:"column:handle;type:citext;not null;uniqueIndex"`
	DisplayName  string     `gorm:"column:display_name;type:text;not null"`
	PasswordHash string     `gorm:"column:password_hash;type:text;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at;type:timestamptz"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
