package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"github.com/reelmates/reelmates-backend/pkg/types"
)

const (
	maxBodyLength    = 1200
	replySnippetRune = 80
)

// SendMessageRequest is the payload for posting a chat message. Body may be
// empty only when a shared-media attachment rides along.
type SendMessageRequest struct {
	Body        string          `json:"body" validate:"max=1200"`
	SharedMedia *types.MediaRef `json:"shared_media,omitempty"`
	ReplyToID   *uuid.UUID      `json:"reply_to_id,omitempty"`
}

// ToggleReactionRequest carries the emoji being toggled.
type ToggleReactionRequest struct {
	Value string `json:"value" validate:"required"`
}

// ReplyPreviewDTO is the resolved one-level reply context shown inline.
type ReplyPreviewDTO struct {
	MessageID  uuid.UUID `json:"message_id"`
	SenderName string    `json:"sender_name"`
	Snippet    string    `json:"snippet"`
}

// ReactionSummaryDTO aggregates one emoji on one message.
type ReactionSummaryDTO struct {
	Value   enums.ReactionValue `json:"value"`
	Count   int64               `json:"count"`
	Reacted bool                `json:"reacted"`
}

// MessageDTO is the message projection with resolved reply preview and
// per-viewer reaction summaries.
type MessageDTO struct {
	ID          uuid.UUID            `json:"id"`
	GroupID     uuid.UUID            `json:"group_id"`
	Sender      users.MemberDTO      `json:"sender"`
	Body        string               `json:"body"`
	SharedMedia *types.MediaRef      `json:"shared_media,omitempty"`
	ReplyTo     *ReplyPreviewDTO     `json:"reply_to,omitempty"`
	Reactions   []ReactionSummaryDTO `json:"reactions"`
	CreatedAt   time.Time            `json:"created_at"`
}

// MessagePageDTO is a cursor page of messages, newest first.
type MessagePageDTO struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ToggleResultDTO reports the reaction state after a toggle.
type ToggleResultDTO struct {
	MessageID uuid.UUID           `json:"message_id"`
	Value     enums.ReactionValue `json:"value"`
	Reacted   bool                `json:"reacted"`
}

// UnseenCountDTO is the badge count for one group.
type UnseenCountDTO struct {
	GroupID uuid.UUID `json:"group_id"`
	Count   int64     `json:"count"`
}

func sharedMediaFromModel(m *models.Message) *types.MediaRef {
	if m.SharedMediaType == nil || m.SharedMediaID == nil || m.SharedTitle == nil {
		return nil
	}
	ref := &types.MediaRef{
		MediaType: *m.SharedMediaType,
		MediaID:   *m.SharedMediaID,
		Title:     *m.SharedTitle,
	}
	if m.SharedPoster != nil {
		ref.Poster = *m.SharedPoster
	}
	if m.SharedYear != nil {
		ref.Year = *m.SharedYear
	}
	return ref
}

func replySnippet(body string, shared *types.MediaRef) string {
	if body == "" && shared != nil {
		return shared.Title
	}
	runes := []rune(body)
	if len(runes) <= replySnippetRune {
		return body
	}
	return string(runes[:replySnippetRune]) + "…"
}
