package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// CreateGroupRequest is the payload for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Description string `json:"description" validate:"max=300"`
}

// UpdateGroupRequest carries the owner-editable group fields.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=60"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
}

// InviteRequest identifies the user being invited to a group.
type InviteRequest struct {
	InviteeID uuid.UUID `json:"invitee_id" validate:"required"`
}

// RespondInviteRequest carries the invitee's decision.
type RespondInviteRequest struct {
	Decision enums.InviteDecision `json:"decision" validate:"required,oneof=accept reject"`
}

// GroupDTO is the group projection returned to members.
type GroupDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	MemberCount int64     `json:"member_count"`
	UnseenCount int64     `json:"unseen_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberDTO combines membership metadata with the user's public identity.
type MemberDTO struct {
	users.MemberDTO
	Role     enums.MemberRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

// InviteDTO is the invite projection shown to invitees and group owners.
type InviteDTO struct {
	ID            uuid.UUID          `json:"id"`
	GroupID       uuid.UUID          `json:"group_id"`
	GroupName     string             `json:"group_name"`
	InviterID     uuid.UUID          `json:"inviter_id"`
	InviterHandle string             `json:"inviter_handle"`
	InviteeID     uuid.UUID          `json:"invitee_id"`
	InviteeHandle string             `json:"invitee_handle"`
	Status        enums.InviteStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

// AcceptedInviteDTO is returned by respondToInvite so the client can switch context.
type AcceptedInviteDTO struct {
	InviteID uuid.UUID          `json:"invite_id"`
	GroupID  uuid.UUID          `json:"group_id"`
	Status   enums.InviteStatus `json:"status"`
}

// CandidateDTO is a friend who can still be invited to the group.
type CandidateDTO struct {
	users.MemberDTO
}

func groupFromModel(g *models.Group, memberCount int64) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		MemberCount: memberCount,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
