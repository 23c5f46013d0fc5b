package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/groups"
	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/db"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	pkgerrors "github.com/reelmates/reelmates-backend/pkg/errors"
	"github.com/reelmates/reelmates-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service defines the group chat behavior needed by controllers.
type Service interface {
	Send(ctx context.Context, groupID, senderID uuid.UUID, req SendMessageRequest) (*MessageDTO, error)
	List(ctx context.Context, groupID, viewerID uuid.UUID, params pagination.Params) (*MessagePageDTO, error)
	ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, value string) (*ToggleResultDTO, error)
	UnseenCount(ctx context.Context, groupID, userID uuid.UUID) (*UnseenCountDTO, error)
}

type messageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	FindMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListMessages(ctx context.Context, groupID, viewerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]MessageDTO, error)
	ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, value enums.ReactionValue) (bool, error)
	UpsertSeen(ctx context.Context, groupID, userID uuid.UUID, at time.Time) error
	UnseenCount(ctx context.Context, groupID, userID uuid.UUID) (int64, error)
}

type senderDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	store   messageStore
	senders senderDirectory
	members groups.MembershipChecker
}

// ServiceParams bundles the dependencies for the chat service.
type ServiceParams struct {
	Store   messageStore
	Senders senderDirectory
	Members groups.MembershipChecker
}

// NewService constructs the chat service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("message store is required")
	}
	if params.Senders == nil {
		return nil, fmt.Errorf("sender directory is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("membership checker is required")
	}
	return &service{
		store:   params.Store,
		senders: params.Senders,
		members: params.Members,
	}, nil
}

// Send posts a message. Mention tokens in the body are stored exactly as
// typed; resolution against the roster happens at render time.
func (s *service) Send(ctx context.Context, groupID, senderID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	if err := s.requireMembership(ctx, groupID, senderID); err != nil {
		return nil, err
	}

	if len([]rune(req.Body)) > maxBodyLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body must be at most 1200 characters")
	}
	if strings.TrimSpace(req.Body) == "" && req.SharedMedia == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body or shared media is required")
	}
	if req.SharedMedia != nil {
		if !req.SharedMedia.Validate() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shared media reference is invalid")
		}
	}

	message := &models.Message{
		GroupID:  groupID,
		SenderID: senderID,
		Body:     req.Body,
	}
	if req.SharedMedia != nil {
		shared := *req.SharedMedia
		message.SharedMediaType = &shared.MediaType
		message.SharedMediaID = &shared.MediaID
		message.SharedTitle = &shared.Title
		if shared.Poster != "" {
			message.SharedPoster = &shared.Poster
		}
		if shared.Year != 0 {
			message.SharedYear = &shared.Year
		}
	}

	var replyTarget *models.Message
	if req.ReplyToID != nil {
		target, err := s.requireReplyTarget(ctx, groupID, *req.ReplyToID)
		if err != nil {
			return nil, err
		}
		replyTarget = target
		message.ReplyToID = &target.ID
	}

	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, storeError(err, "create message")
	}
	// Sending counts as seeing the room up to your own message.
	if err := s.store.UpsertSeen(ctx, groupID, senderID, message.CreatedAt); err != nil {
		return nil, storeError(err, "advance seen marker")
	}

	return s.buildMessageDTO(ctx, message, replyTarget)
}

// List returns a cursor page of the group's messages, newest first, and
// advances the viewer's seen marker.
func (s *service) List(ctx context.Context, groupID, viewerID uuid.UUID, params pagination.Params) (*MessagePageDTO, error) {
	if err := s.requireMembership(ctx, groupID, viewerID); err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	messages, err := s.store.ListMessages(ctx, groupID, viewerID, cursor, limit+1)
	if err != nil {
		return nil, storeError(err, "list messages")
	}

	page := &MessagePageDTO{Messages: messages}
	if len(messages) > limit {
		page.Messages = messages[:limit]
		last := page.Messages[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	// Loading the first page clears the backlog badge.
	if cursor == nil {
		if err := s.store.UpsertSeen(ctx, groupID, viewerID, time.Now().UTC()); err != nil {
			return nil, storeError(err, "advance seen marker")
		}
	}
	return page, nil
}

func (s *service) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, value string) (*ToggleResultDTO, error) {
	message, err := s.requireMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, message.GroupID, userID); err != nil {
		return nil, err
	}

	reaction, err := enums.ParseReactionValue(value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported reaction")
	}

	reacted, err := s.store.ToggleReaction(ctx, messageID, userID, reaction)
	if err != nil {
		return nil, storeError(err, "toggle reaction")
	}
	return &ToggleResultDTO{
		MessageID: messageID,
		Value:     reaction,
		Reacted:   reacted,
	}, nil
}

func (s *service) UnseenCount(ctx context.Context, groupID, userID uuid.UUID) (*UnseenCountDTO, error) {
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	count, err := s.store.UnseenCount(ctx, groupID, userID)
	if err != nil {
		return nil, storeError(err, "count unseen messages")
	}
	return &UnseenCountDTO{
		GroupID: groupID,
		Count:   count,
	}, nil
}

// requireReplyTarget enforces single-level threading: the target must exist,
// live in the same group, and be an original message rather than a reply.
func (s *service) requireReplyTarget(ctx context.Context, groupID, replyToID uuid.UUID) (*models.Message, error) {
	target, err := s.requireMessage(ctx, replyToID)
	if err != nil {
		return nil, err
	}
	if target.GroupID != groupID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reply target not found in this group")
	}
	if target.ReplyToID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot reply to a reply")
	}
	return target, nil
}

func (s *service) requireMessage(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	message, err := s.store.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, storeError(err, "load message")
	}
	return message, nil
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

func (s *service) buildMessageDTO(ctx context.Context, message *models.Message, replyTarget *models.Message) (*MessageDTO, error) {
	sender, err := s.senders.FindByID(ctx, message.SenderID)
	if err != nil {
		return nil, storeError(err, "load sender")
	}

	dto := &MessageDTO{
		ID:          message.ID,
		GroupID:     message.GroupID,
		Sender:      users.MemberDTO{ID: sender.ID, Handle: sender.Handle, DisplayName: sender.DisplayName},
		Body:        message.Body,
		SharedMedia: sharedMediaFromModel(message),
		Reactions:   []ReactionSummaryDTO{},
		CreatedAt:   message.CreatedAt,
	}
	if replyTarget != nil {
		targetSender, err := s.senders.FindByID(ctx, replyTarget.SenderID)
		if err != nil {
			return nil, storeError(err, "load reply sender")
		}
		dto.ReplyTo = &ReplyPreviewDTO{
			MessageID:  replyTarget.ID,
			SenderName: targetSender.DisplayName,
			Snippet:    replySnippet(replyTarget.Body, sharedMediaFromModel(replyTarget)),
		}
	}
	return dto, nil
}

func storeError(err error, msg string) error {
	if db.IsSchemaUnavailable(err) {
		return pkgerrors.Wrap(pkgerrors.CodeSchemaUnavailable, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
