package groups

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes group, membership, and invite persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroup inserts a group row.
func (r *Repository) CreateGroup(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// FindGroupByID loads a group by id.
func (r *Repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup overwrites the mutable group fields.
func (r *Repository) UpdateGroup(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CreateMembership persists a membership row.
func (r *Repository) CreateMembership(ctx context.Context, groupID, userID uuid.UUID, role enums.MemberRole) (*models.GroupMembership, error) {
	membership := &models.GroupMembership{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	}
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// GetMembership retrieves a membership by group and user.
func (r *Repository) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// IsMember reports whether the user belongs to the group.
func (r *Repository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteMembership removes the membership row and reports whether one existed.
func (r *Repository) DeleteMembership(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MemberCount returns the live membership count for a group.
func (r *Repository) MemberCount(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

type memberRow struct {
	UserID      uuid.UUID
	Handle      string
	DisplayName string
	Role        enums.MemberRole
	CreatedAt   time.Time
}

// ListMembers returns the group roster joined with user metadata.
func (r *Repository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]MemberDTO, error) {
	var rows []memberRow
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Select("group_memberships.user_id, users.handle, users.display_name, group_memberships.role, group_memberships.created_at").
		Joins("JOIN users ON users.id = group_memberships.user_id").
		Where("group_memberships.group_id = ?", groupID).
		Order("group_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		members = append(members, MemberDTO{
			MemberDTO: memberIdentity(row),
			Role:      row.Role,
			JoinedAt:  row.CreatedAt,
		})
	}
	return members, nil
}

func memberIdentity(row memberRow) users.MemberDTO {
	return users.MemberDTO{
		ID:          row.UserID,
		Handle:      row.Handle,
		DisplayName: row.DisplayName,
	}
}

type groupRow struct {
	ID          uuid.UUID
	Name        string
	Description string
	OwnerID     uuid.UUID
	MemberCount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListUserGroups returns the groups the user belongs to with live member counts.
func (r *Repository) ListUserGroups(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error) {
	var rows []groupRow
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Select(`groups.id, groups.name, groups.description, groups.owner_id, groups.created_at, groups.updated_at,
			(SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = groups.id) AS member_count`).
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("group_memberships.user_id = ?", userID).
		Order("groups.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]GroupDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, GroupDTO{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			OwnerID:     row.OwnerID,
			MemberCount: row.MemberCount,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out, nil
}

// CreateInvite inserts a pending invite row.
func (r *Repository) CreateInvite(ctx context.Context, groupID, inviterID, inviteeID uuid.UUID) (*models.GroupInvite, error) {
	invite := &models.GroupInvite{
		GroupID:   groupID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    enums.InviteStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

// FindInviteByID loads an invite by id.
func (r *Repository) FindInviteByID(ctx context.Context, id uuid.UUID) (*models.GroupInvite, error) {
	var invite models.GroupInvite
	if err := r.db.WithContext(ctx).First(&invite, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// ResolveInvite transitions a pending invite to its terminal status. It
// reports whether the row was still pending, so concurrent responders
// cannot both consume the same invite.
func (r *Repository) ResolveInvite(ctx context.Context, id uuid.UUID, status enums.InviteStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("id = ? AND status = ?", id, enums.InviteStatusPending).
		Updates(map[string]any{"status": status, "responded_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasPendingInvite reports whether the invitee already has a pending invite to the group.
func (r *Repository) HasPendingInvite(ctx context.Context, groupID, inviteeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("group_id = ? AND invitee_id = ? AND status = ?", groupID, inviteeID, enums.InviteStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type inviteRow struct {
	ID            uuid.UUID
	GroupID       uuid.UUID
	GroupName     string
	InviterID     uuid.UUID
	InviterHandle string
	InviteeID     uuid.UUID
	InviteeHandle string
	Status        enums.InviteStatus
	CreatedAt     time.Time
}

// ListIncomingInvites returns the pending invites addressed to the user.
func (r *Repository) ListIncomingInvites(ctx context.Context, userID uuid.UUID) ([]InviteDTO, error) {
	return r.listInvites(ctx, "group_invites.invitee_id = ?", userID)
}

// ListPendingInvites returns the pending invites sent for the group.
func (r *Repository) ListPendingInvites(ctx context.Context, groupID uuid.UUID) ([]InviteDTO, error) {
	return r.listInvites(ctx, "group_invites.group_id = ?", groupID)
}

func (r *Repository) listInvites(ctx context.Context, cond string, arg any) ([]InviteDTO, error) {
	var rows []inviteRow
	err := r.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Select(`group_invites.id, group_invites.group_id, groups.name AS group_name,
			group_invites.inviter_id, inviters.handle AS inviter_handle,
			group_invites.invitee_id, invitees.handle AS invitee_handle,
			group_invites.status, group_invites.created_at`).
		Joins("JOIN groups ON groups.id = group_invites.group_id").
		Joins("JOIN users AS inviters ON inviters.id = group_invites.inviter_id").
		Joins("JOIN users AS invitees ON invitees.id = group_invites.invitee_id").
		Where(cond, arg).
		Where("group_invites.status = ?", enums.InviteStatusPending).
		Order("group_invites.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	invites := make([]InviteDTO, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, InviteDTO(row))
	}
	return invites, nil
}
