package picks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"github.com/reelmates/reelmates-backend/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes pick, vote, and watch-mark persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePick inserts a pick row.
func (r *Repository) CreatePick(ctx context.Context, pick *models.Pick) error {
	return r.db.WithContext(ctx).Create(pick).Error
}

// FindPickByID loads a pick by id.
func (r *Repository) FindPickByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	var pick models.Pick
	if err := r.db.WithContext(ctx).First(&pick, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pick, nil
}

// UpsertVote writes the user's vote, overwriting any prior value in place so
// no intermediate "no vote" state is ever observable.
func (r *Repository) UpsertVote(ctx context.Context, pickID, userID uuid.UUID, value int) error {
	vote := &models.PickVote{
		PickID:    pickID,
		UserID:    userID,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pick_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(vote).Error
}

// DeleteVote removes the user's vote if present.
func (r *Repository) DeleteVote(ctx context.Context, pickID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("pick_id = ? AND user_id = ?", pickID, userID).
		Delete(&models.PickVote{}).Error
}

// InsertWatchMark records that the user watched the pick. A repeat call is
// swallowed by the conflict clause, so watched counts never double.
func (r *Repository) InsertWatchMark(ctx context.Context, pickID, userID uuid.UUID) error {
	mark := &models.PickWatch{
		PickID: pickID,
		UserID: userID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mark).Error
}

type pickRow struct {
	ID            uuid.UUID
	GroupID       uuid.UUID
	SenderID      uuid.UUID
	MediaType     enums.MediaType
	MediaID       string
	Title         string
	Poster        string
	Year          int
	Note          string
	CreatedAt     time.Time
	Score         int64
	Upvotes       int64
	Downvotes     int64
	WatchedCount  int64
	RequiredCount int64
	ViewerVote    *int
	ViewerWatched bool
}

const visiblePicksQuery = `
SELECT picks.id, picks.group_id, picks.sender_id, picks.media_type, picks.media_id,
       picks.title, picks.poster, picks.year, picks.note, picks.created_at,
       COALESCE(SUM(pv.value), 0)                                   AS score,
       COUNT(pv.value) FILTER (WHERE pv.value = 1)                  AS upvotes,
       COUNT(pv.value) FILTER (WHERE pv.value = -1)                 AS downvotes,
       (SELECT COUNT(*) FROM pick_watches pw
         WHERE pw.pick_id = picks.id)                               AS watched_count,
       GREATEST(1, (SELECT COUNT(*) FROM group_memberships gm
         WHERE gm.group_id = picks.group_id))                       AS required_count,
       (SELECT value FROM pick_votes mine
         WHERE mine.pick_id = picks.id AND mine.user_id = @viewer)  AS viewer_vote,
       EXISTS (SELECT 1 FROM pick_watches mine
         WHERE mine.pick_id = picks.id AND mine.user_id = @viewer)  AS viewer_watched
FROM picks
LEFT JOIN pick_votes pv ON pv.pick_id = picks.id
WHERE picks.group_id = @group
GROUP BY picks.id
HAVING (SELECT COUNT(*) FROM pick_watches pw WHERE pw.pick_id = picks.id)
     < GREATEST(1, (SELECT COUNT(*) FROM group_memberships gm WHERE gm.group_id = picks.group_id))
ORDER BY score DESC, picks.created_at DESC
`

// ListVisible returns the group's active picks with aggregates for the viewer.
// The watched threshold compares against the live member count, so a pick
// that met its threshold stops appearing for everyone on the next read.
func (r *Repository) ListVisible(ctx context.Context, groupID, viewerID uuid.UUID) ([]PickDTO, error) {
	var rows []pickRow
	err := r.db.WithContext(ctx).
		Raw(visiblePicksQuery,
			map[string]any{"group": groupID, "viewer": viewerID}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PickDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PickDTO{
			ID:       row.ID,
			GroupID:  row.GroupID,
			SenderID: row.SenderID,
			Media: types.MediaRef{
				MediaType: row.MediaType,
				MediaID:   row.MediaID,
				Title:     row.Title,
				Poster:    row.Poster,
				Year:      row.Year,
			},
			Note:                 row.Note,
			Score:                row.Score,
			Upvotes:              row.Upvotes,
			Downvotes:            row.Downvotes,
			WatchedCount:         row.WatchedCount,
			RequiredWatchedCount: row.RequiredCount,
			ViewerVote:           row.ViewerVote,
			ViewerWatched:        row.ViewerWatched,
			CreatedAt:            row.CreatedAt,
		})
	}
	return out, nil
}
