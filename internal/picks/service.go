package picks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/groups"
	"github.com/reelmates/reelmates-backend/pkg/db"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	pkgerrors "github.com/reelmates/reelmates-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service defines the pick ledger behavior needed by controllers.
type Service interface {
	AddPick(ctx context.Context, groupID, senderID uuid.UUID, req AddPickRequest) (*PickDTO, error)
	Vote(ctx context.Context, pickID, userID uuid.UUID, value int) error
	ClearVote(ctx context.Context, pickID, userID uuid.UUID) error
	MarkWatched(ctx context.Context, pickID, userID uuid.UUID) error
	ListVisible(ctx context.Context, groupID, viewerID uuid.UUID) ([]PickDTO, error)
}

type pickStore interface {
	CreatePick(ctx context.Context, pick *models.Pick) error
	FindPickByID(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	UpsertVote(ctx context.Context, pickID, userID uuid.UUID, value int) error
	DeleteVote(ctx context.Context, pickID, userID uuid.UUID) error
	InsertWatchMark(ctx context.Context, pickID, userID uuid.UUID) error
	ListVisible(ctx context.Context, groupID, viewerID uuid.UUID) ([]PickDTO, error)
}

type seenMarker interface {
	UpsertSeen(ctx context.Context, groupID, userID uuid.UUID, at time.Time) error
}

type service struct {
	store   pickStore
	members groups.MembershipChecker
	seen    seenMarker
}

// ServiceParams bundles the dependencies for the picks service.
type ServiceParams struct {
	Store   pickStore
	Members groups.MembershipChecker
	Seen    seenMarker
}

// NewService constructs the picks service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("pick store is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker is required")
	}
	if params.Seen == nil {
		return nil, fmt.Errorf("seen marker store is required")
	}
	return &service{
		store:   params.Store,
		members: params.Members,
		seen:    params.Seen,
	}, nil
}

func (s *service) AddPick(ctx context.Context, groupID, senderID uuid.UUID, req AddPickRequest) (*PickDTO, error) {
	if err := s.requireMembership(ctx, groupID, senderID); err != nil {
		return nil, err
	}

	mediaType, err := enums.ParseMediaType(req.MediaType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media_type must be movie or show")
	}
	mediaID := strings.TrimSpace(req.MediaID)
	title := strings.TrimSpace(req.Title)
	if mediaID == "" || title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media_id and title are required")
	}
	note := strings.TrimSpace(req.Note)
	if utf8.RuneCountInString(note) > 400 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note must be at most 400 characters")
	}

	pick := &models.Pick{
		GroupID:   groupID,
		SenderID:  senderID,
		MediaType: mediaType,
		MediaID:   mediaID,
		Title:     title,
		Poster:    strings.TrimSpace(req.Poster),
		Year:      req.Year,
		Note:      note,
	}

	if err := s.store.CreatePick(ctx, pick); err != nil {
		if db.IsUniqueViolation(err, "picks_group_media_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already in group picks")
		}
		return nil, storeError(err, "create pick")
	}

	count, err := s.members.MemberCount(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "count members")
	}
	if count < 1 {
		count = 1
	}

	dto := pickFromModel(pick)
	dto.ViewerVote = nil
	dto.RequiredWatchedCount = count
	return dto, nil
}

func (s *service) Vote(ctx context.Context, pickID, userID uuid.UUID, value int) error {
	pick, err := s.requirePick(ctx, pickID)
	if err != nil {
		return err
	}
	if err := s.requireMembership(ctx, pick.GroupID, userID); err != nil {
		return err
	}
	if value != -1 && value != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "vote value must be -1 or 1")
	}

	if err := s.store.UpsertVote(ctx, pickID, userID, value); err != nil {
		return storeError(err, "upsert vote")
	}
	return nil
}

func (s *service) ClearVote(ctx context.Context, pickID, userID uuid.UUID) error {
	pick, err := s.requirePick(ctx, pickID)
	if err != nil {
		return err
	}
	if err := s.requireMembership(ctx, pick.GroupID, userID); err != nil {
		return err
	}

	// Deleting an absent vote is a no-op, not an error.
	if err := s.store.DeleteVote(ctx, pickID, userID); err != nil {
		return storeError(err, "delete vote")
	}
	return nil
}

func (s *service) MarkWatched(ctx context.Context, pickID, userID uuid.UUID) error {
	pick, err := s.requirePick(ctx, pickID)
	if err != nil {
		return err
	}
	if err := s.requireMembership(ctx, pick.GroupID, userID); err != nil {
		return err
	}

	if err := s.store.InsertWatchMark(ctx, pickID, userID); err != nil {
		return storeError(err, "insert watch mark")
	}
	return nil
}

func (s *service) ListVisible(ctx context.Context, groupID, viewerID uuid.UUID) ([]PickDTO, error) {
	if err := s.requireMembership(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	list, err := s.store.ListVisible(ctx, groupID, viewerID)
	if err != nil {
		return nil, storeError(err, "list picks")
	}

	// Loading the pick list counts as seeing the group.
	if err := s.seen.UpsertSeen(ctx, groupID, viewerID, time.Now().UTC()); err != nil {
		return nil, storeError(err, "advance seen marker")
	}
	return list, nil
}

func (s *service) requirePick(ctx context.Context, pickID uuid.UUID) (*models.Pick, error) {
	pick, err := s.store.FindPickByID(ctx, pickID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pick not found")
		}
		return nil, storeError(err, "load pick")
	}
	return pick, nil
}

func (s *service) requireMembership(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return storeError(err, "check membership")
	}
	if !member {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")
	}
	return nil
}

func storeError(err error, msg string) error {
	if db.IsSchemaUnavailable(err) {
		return pkgerrors.Wrap(pkgerrors.CodeSchemaUnavailable, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
