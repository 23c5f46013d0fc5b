package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/friends"
	"github.com/reelmates/reelmates-backend/pkg/db"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	pkgerrors "github.com/reelmates/reelmates-backend/pkg/errors"
	"gorm.io/gorm"
)

const inviteCandidateCap = 50

// Service defines the group lifecycle behavior needed by controllers.
type Service interface {
	CreateGroup(ctx context.Context, ownerID uuid.UUID, req CreateGroupRequest) (*GroupDTO, error)
	UpdateGroup(ctx context.Context, groupID, callerID uuid.UUID, req UpdateGroupRequest) (*GroupDTO, error)
	LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) error
	InviteMember(ctx context.Context, groupID, inviterID, inviteeID uuid.UUID) (*models.GroupInvite, error)
	RespondToInvite(ctx context.Context, inviteID, userID uuid.UUID, decision enums.InviteDecision) (*AcceptedInviteDTO, error)
	ListGroups(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error)
	ListMembers(ctx context.Context, groupID, viewerID uuid.UUID) ([]MemberDTO, error)
	ListIncomingInvites(ctx context.Context, userID uuid.UUID) ([]InviteDTO, error)
	ListPendingInvites(ctx context.Context, groupID, callerID uuid.UUID) ([]InviteDTO, error)
	ListInviteCandidates(ctx context.Context, groupID, callerID uuid.UUID) ([]CandidateDTO, error)
}

// MembershipChecker is the access-control surface other domains depend on.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	MemberCount(ctx context.Context, groupID uuid.UUID) (int64, error)
}

type unseenCounter interface {
	UnseenCounts(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type service struct {
	db      *db.Client
	repo    *Repository
	friends friends.Directory
	unseen  unseenCounter
}

// ServiceParams bundles the dependencies for the groups service.
type ServiceParams struct {
	DB        *db.Client
	Directory friends.Directory
	Unseen    unseenCounter
}

// NewService constructs the groups service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		db:      params.DB,
		repo:    NewRepository(params.DB.DB()),
		friends: params.Directory,
		unseen:  params.Unseen,
	}, nil
}

// NewMembershipChecker exposes the repo's membership reads for other domains.
func NewMembershipChecker(client *db.Client) MembershipChecker {
	return NewRepository(client.DB())
}

func (s *service) CreateGroup(ctx context.Context, ownerID uuid.UUID, req CreateGroupRequest) (*GroupDTO, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	// The owner membership is created in the same transaction so a group
	// can never exist without exactly one owner member.
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.CreateGroup(ctx, group); err != nil {
			return storeError(err, "create group")
		}
		if _, err := repo.CreateMembership(ctx, group.ID, ownerID, enums.MemberRoleOwner); err != nil {
			return storeError(err, "create owner membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return groupFromModel(group, 1), nil
}

func (s *service) UpdateGroup(ctx context.Context, groupID, callerID uuid.UUID, req UpdateGroupRequest) (*GroupDTO, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can edit the group")
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		updates["name"] = name
		group.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		updates["description"] = description
		group.Description = description
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	if err := s.repo.UpdateGroup(ctx, groupID, updates); err != nil {
		return nil, storeError(err, "update group")
	}

	count, err := s.repo.MemberCount(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "count members")
	}
	return groupFromModel(group, count), nil
}

func (s *service) LeaveGroup(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "the owner cannot leave the group")
	}

	removed, err := s.repo.DeleteMembership(ctx, groupID, userID)
	if err != nil {
		return storeError(err, "delete membership")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not a member of this group")
	}
	return nil
}

func (s *service) InviteMember(ctx context.Context, groupID, inviterID, inviteeID uuid.UUID) (*models.GroupInvite, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != inviterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can invite members")
	}

	member, err := s.repo.IsMember(ctx, groupID, inviteeID)
	if err != nil {
		return nil, storeError(err, "check membership")
	}
	if member {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member")
	}

	invite, err := s.repo.CreateInvite(ctx, groupID, inviterID, inviteeID)
	if err != nil {
		if db.IsUniqueViolation(err, "group_invites_pending_invitee_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a pending invite")
		}
		return nil, storeError(err, "create invite")
	}
	return invite, nil
}

func (s *service) RespondToInvite(ctx context.Context, inviteID, userID uuid.UUID, decision enums.InviteDecision) (*AcceptedInviteDTO, error) {
	if !decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}

	invite, err := s.repo.FindInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, storeError(err, "load invite")
	}
	if invite.InviteeID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invite is not addressed to you")
	}
	if invite.Status != enums.InviteStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invite has already been resolved")
	}

	status := enums.InviteStatusRejected
	if decision == enums.InviteDecisionAccept {
		status = enums.InviteStatusAccepted
	}
	now := time.Now().UTC()

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		resolved, err := repo.ResolveInvite(ctx, inviteID, status, now)
		if err != nil {
			return storeError(err, "resolve invite")
		}
		if !resolved {
			return pkgerrors.New(pkgerrors.CodeForbidden, "invite has already been resolved")
		}

		if status != enums.InviteStatusAccepted {
			return nil
		}

		if _, err := repo.CreateMembership(ctx, invite.GroupID, userID, enums.MemberRoleMember); err != nil {
			if db.IsUniqueViolation(err, "group_memberships_group_id_user_id_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "already a member of this group")
			}
			return storeError(err, "create membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AcceptedInviteDTO{
		InviteID: inviteID,
		GroupID:  invite.GroupID,
		Status:   status,
	}, nil
}

func (s *service) ListGroups(ctx context.Context, userID uuid.UUID) ([]GroupDTO, error) {
	groups, err := s.repo.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, storeError(err, "list groups")
	}

	if s.unseen != nil && len(groups) > 0 {
		ids := make([]uuid.UUID, 0, len(groups))
		for _, g := range groups {
			ids = append(ids, g.ID)
		}
		counts, err := s.unseen.UnseenCounts(ctx, userID, ids)
		if err != nil {
			return nil, storeError(err, "count unseen messages")
		}
		for i := range groups {
			groups[i].UnseenCount = counts[groups[i].ID]
		}
	}
	return groups, nil
}

func (s *service) ListMembers(ctx context.Context, groupID, viewerID uuid.UUID) ([]MemberDTO, error) {
	if err := s.requireMembership(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "list members")
	}
	return members, nil
}

func (s *service) ListIncomingInvites(ctx context.Context, userID uuid.UUID) ([]InviteDTO, error) {
	invites, err := s.repo.ListIncomingInvites(ctx, userID)
	if err != nil {
		return nil, storeError(err, "list incoming invites")
	}
	return invites, nil
}

func (s *service) ListPendingInvites(ctx context.Context, groupID, callerID uuid.UUID) ([]InviteDTO, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can view pending invites")
	}
	invites, err := s.repo.ListPendingInvites(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "list pending invites")
	}
	return invites, nil
}

func (s *service) ListInviteCandidates(ctx context.Context, groupID, callerID uuid.UUID) ([]CandidateDTO, error) {
	group, err := s.requireGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can invite members")
	}
	if s.friends == nil {
		return []CandidateDTO{}, nil
	}

	list, err := s.friends.Friends(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch friends")
	}

	candidates := make([]CandidateDTO, 0, len(list))
	for _, friend := range list {
		if len(candidates) >= inviteCandidateCap {
			break
		}
		member, err := s.repo.IsMember(ctx, groupID, friend.ID)
		if err != nil {
			return nil, storeError(err, "check membership")
		}
		if member {
			continue
		}
		pending, err := s.repo.HasPendingInvite(ctx, groupID, friend.ID)
		if err != nil {
			return nil, storeError(err, "check pending invite")
		}
		if pending {
			continue
		}
		candidate := CandidateDTO{}
		candidate.ID = friend.ID
		candidate.Handle = friend.Handle
		candidate.DisplayName = friend.DisplayName
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (s *service) requireGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, storeError(err, "load group")
	}
	return group, nil
}

func (s *service) requireMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return storeError(err, "check membership")
	}
	if !member {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")
	}
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 60 {
		return pkgerrors.New(pkgerrors.CodeValidation, "name must be between 2 and 60 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > 300 {
		return pkgerrors.New(pkgerrors.CodeValidation, "description must be at most 300 characters")
	}
	return nil
}

func storeError(err error, msg string) error {
	if db.IsSchemaUnavailable(err) {
		return pkgerrors.Wrap(pkgerrors.CodeSchemaUnavailable, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
