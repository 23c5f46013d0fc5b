package picks

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/types"
)

// AddPickRequest is the payload for proposing a media pick.
type AddPickRequest struct {
	MediaType string `json:"media_type" validate:"required,oneof=movie show"`
	MediaID   string `json:"media_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Poster    string `json:"poster"`
	Year      int    `json:"year"`
	Note      string `json:"note" validate:"max=400"`
}

// VoteRequest carries a single up or down vote.
type VoteRequest struct {
	Value int `json:"value" validate:"required,oneof=-1 1"`
}

// PickDTO is the pick projection with its vote and watch aggregates. The
// aggregates are recomputed on every read, never cached.
type PickDTO struct {
	ID                   uuid.UUID      `json:"id"`
	GroupID              uuid.UUID      `json:"group_id"`
	SenderID             uuid.UUID      `json:"sender_id"`
	Media                types.MediaRef `json:"media"`
	Note                 string         `json:"note"`
	Score                int64          `json:"score"`
	Upvotes              int64          `json:"upvotes"`
	Downvotes            int64          `json:"downvotes"`
	WatchedCount         int64          `json:"watched_count"`
	RequiredWatchedCount int64          `json:"required_watched_count"`
	ViewerVote           *int           `json:"viewer_vote,omitempty"`
	ViewerWatched        bool           `json:"viewer_watched"`
	CreatedAt            time.Time      `json:"created_at"`
}

func pickFromModel(p *models.Pick) *PickDTO {
	if p == nil {
		return nil
	}
	return &PickDTO{
		ID:       p.ID,
		GroupID:  p.GroupID,
		SenderID: p.SenderID,
		Media: types.MediaRef{
			MediaType: p.MediaType,
			MediaID:   p.MediaID,
			Title:     p.Title,
			Poster:    p.Poster,
			Year:      p.Year,
		},
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}
