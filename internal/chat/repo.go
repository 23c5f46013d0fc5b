package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/users"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"github.com/reelmates/reelmates-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes message, reaction, and seen-marker persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMessage inserts a message row.
func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindMessageByID loads a message by id.
func (r *Repository) FindMessageByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

type messageRow struct {
	models.Message
	SenderHandle      string
	SenderDisplayName string
}

// ListMessages returns up to limit messages for the group, newest first,
// with sender identity, resolved reply previews, and reaction summaries
// carrying the viewer's own-reaction flag.
func (r *Repository) ListMessages(ctx context.Context, groupID, viewerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]MessageDTO, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.*, users.handle AS sender_handle, users.display_name AS sender_display_name").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.group_id = ?", groupID)
	if cursor != nil {
		query = query.Where(
			"(messages.created_at, messages.id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []messageRow
	err := query.
		Order("messages.created_at DESC, messages.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []MessageDTO{}, nil
	}

	messageIDs := make([]uuid.UUID, 0, len(rows))
	replyIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		messageIDs = append(messageIDs, row.ID)
		if row.ReplyToID != nil {
			replyIDs = append(replyIDs, *row.ReplyToID)
		}
	}

	previews, err := r.loadReplyPreviews(ctx, replyIDs)
	if err != nil {
		return nil, err
	}
	reactions, err := r.loadReactions(ctx, messageIDs, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		dto := MessageDTO{
			ID:      row.ID,
			GroupID: row.GroupID,
			Sender: users.MemberDTO{
				ID:          row.SenderID,
				Handle:      row.SenderHandle,
				DisplayName: row.SenderDisplayName,
			},
			Body:        row.Body,
			SharedMedia: sharedMediaFromModel(&row.Message),
			Reactions:   reactions[row.ID],
			CreatedAt:   row.CreatedAt,
		}
		if dto.Reactions == nil {
			dto.Reactions = []ReactionSummaryDTO{}
		}
		if row.ReplyToID != nil {
			if preview, ok := previews[*row.ReplyToID]; ok {
				dto.ReplyTo = &preview
			}
		}
		out = append(out, dto)
	}
	return out, nil
}

func (r *Repository) loadReplyPreviews(ctx context.Context, replyIDs []uuid.UUID) (map[uuid.UUID]ReplyPreviewDTO, error) {
	previews := make(map[uuid.UUID]ReplyPreviewDTO, len(replyIDs))
	if len(replyIDs) == 0 {
		return previews, nil
	}

	var rows []messageRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.*, users.handle AS sender_handle, users.display_name AS sender_display_name").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.id IN ?", replyIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		previews[row.ID] = ReplyPreviewDTO{
			MessageID:  row.ID,
			SenderName: row.SenderDisplayName,
			Snippet:    replySnippet(row.Body, sharedMediaFromModel(&row.Message)),
		}
	}
	return previews, nil
}

type reactionRow struct {
	MessageID uuid.UUID
	Value     enums.ReactionValue
	Count     int64
	Reacted   bool
}

func (r *Repository) loadReactions(ctx context.Context, messageIDs []uuid.UUID, viewerID uuid.UUID) (map[uuid.UUID][]ReactionSummaryDTO, error) {
	var rows []reactionRow
	err := r.db.WithContext(ctx).
		Model(&models.MessageReaction{}).
		Select("message_id, value, COUNT(*) AS count, BOOL_OR(user_id = ?) AS reacted", viewerID).
		Where("message_id IN ?", messageIDs).
		Group("message_id, value").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byMessage := make(map[uuid.UUID]map[enums.ReactionValue]ReactionSummaryDTO, len(rows))
	for _, row := range rows {
		if byMessage[row.MessageID] == nil {
			byMessage[row.MessageID] = map[enums.ReactionValue]ReactionSummaryDTO{}
		}
		byMessage[row.MessageID][row.Value] = ReactionSummaryDTO{
			Value:   row.Value,
			Count:   row.Count,
			Reacted: row.Reacted,
		}
	}

	// Emit summaries in the fixed display order of the reaction set.
	out := make(map[uuid.UUID][]ReactionSummaryDTO, len(byMessage))
	for messageID, values := range byMessage {
		summaries := make([]ReactionSummaryDTO, 0, len(values))
		for _, value := range enums.ReactionValues() {
			if summary, ok := values[value]; ok {
				summaries = append(summaries, summary)
			}
		}
		out[messageID] = summaries
	}
	return out, nil
}

// ToggleReaction removes the user's reaction if present, otherwise adds it.
// Returns whether the reaction is set after the call.
func (r *Repository) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, value enums.ReactionValue) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND value = ?", messageID, userID, value).
		Delete(&models.MessageReaction{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	reaction := &models.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Value:     value,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertSeen advances the user's seen marker for the group. The marker only
// moves forward so a stale write can never resurrect a badge.
func (r *Repository) UpsertSeen(ctx context.Context, groupID, userID uuid.UUID, at time.Time) error {
	seen := &models.GroupSeen{
		GroupID:    groupID,
		UserID:     userID,
		LastSeenAt: at.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_seen_at": gorm.Expr("GREATEST(group_seen.last_seen_at, EXCLUDED.last_seen_at)"),
			}),
		}).
		Create(seen).Error
}

// UnseenCount reports how many messages arrived in the group after the
// user's seen marker. A user without a marker has no backlog to badge.
func (r *Repository) UnseenCount(ctx context.Context, groupID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Joins("JOIN group_seen gs ON gs.group_id = messages.group_id AND gs.user_id = ?", userID).
		Where("messages.group_id = ? AND messages.created_at > gs.last_seen_at", groupID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type unseenRow struct {
	GroupID uuid.UUID
	Count   int64
}

// UnseenCounts batches UnseenCount across groups for the sidebar listing.
// Groups without a marker or without backlog are simply absent from the map.
func (r *Repository) UnseenCounts(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []unseenRow
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.group_id, COUNT(*) AS count").
		Joins("JOIN group_seen gs ON gs.group_id = messages.group_id AND gs.user_id = ?", userID).
		Where("messages.group_id IN ? AND messages.created_at > gs.last_seen_at", groupIDs).
		Group("messages.group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Count
	}
	return counts, nil
}
