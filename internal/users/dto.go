package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Handle      string     `json:"handle"`
	DisplayName string     `json:"display_name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MemberDTO is the compact shape embedded in group member and message payloads.
type MemberDTO struct {
	ID          uuid.UUID `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Handle       string
	DisplayName  string
	PasswordHash string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func MemberFromModel(u *models.User) MemberDTO {
	if u == nil {
		return MemberDTO{}
	}
	return MemberDTO{
		ID:          u.ID,
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		Handle:       c.Handle,
		DisplayName:  c.DisplayName,
		PasswordHash: c.PasswordHash,
		IsActive:     true,
	}
}
