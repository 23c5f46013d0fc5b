//go:build db
// +build db

package picks

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("REELMATES_DB_DSN")
	if dsn == "" {
		t.Skip("REELMATES_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

type fixture struct {
	tx      *gorm.DB
	repo    *Repository
	group   *models.Group
	ownerID uuid.UUID
	member  uuid.UUID
}

func setupGroup(t *testing.T) fixture {
	t.Helper()
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	owner := createTestUser(t, tx, "owner")
	member := createTestUser(t, tx, "member")

	group := &models.Group{Name: "Watchers", OwnerID: owner.ID}
	if err := tx.Create(group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, m := range []struct {
		id   uuid.UUID
		role enums.MemberRole
	}{
		{owner.ID, enums.MemberRoleOwner},
		{member.ID, enums.MemberRoleMember},
	} {
		membership := &models.GroupMembership{GroupID: group.ID, UserID: m.id, Role: m.role}
		if err := tx.Create(membership).Error; err != nil {
			t.Fatalf("create membership: %v", err)
		}
	}

	return fixture{
		tx:      tx,
		repo:    NewRepository(tx),
		group:   group,
		ownerID: owner.ID,
		member:  member.ID,
	}
}

func createTestUser(t *testing.T, tx *gorm.DB, handle string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("rm_test_%s@example.com", uuid.NewString()),
		Handle:       fmt.Sprintf("%s_%s", handle, uuid.NewString()[:8]),
		DisplayName:  handle,
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func addPick(t *testing.T, f fixture, title, mediaID string) *models.Pick {
	t.Helper()
	pick := &models.Pick{
		GroupID:   f.group.ID,
		SenderID:  f.ownerID,
		MediaType: enums.MediaTypeMovie,
		MediaID:   mediaID,
		Title:     title,
		Year:      2016,
	}
	if err := f.repo.CreatePick(context.Background(), pick); err != nil {
		t.Fatalf("create pick: %v", err)
	}
	return pick
}

func TestDuplicatePickFailsOnConstraint(t *testing.T) {
	f := setupGroup(t)
	addPick(t, f, "Arrival", "42")

	dup := &models.Pick{
		GroupID:   f.group.ID,
		SenderID:  f.member,
		MediaType: enums.MediaTypeMovie,
		MediaID:   "42",
		Title:     "Arrival",
	}
	if err := f.repo.CreatePick(context.Background(), dup); err == nil {
		t.Fatal("expected duplicate pick to fail")
	}
}

func TestVoteAndWatchAggregates(t *testing.T) {
	f := setupGroup(t)
	ctx := context.Background()
	pick := addPick(t, f, "Arrival", "42")

	// B votes +1 -> score 1.
	if err := f.repo.UpsertVote(ctx, pick.ID, f.member, 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	list := listVisible(t, f, f.member)
	if len(list) != 1 || list[0].Score != 1 || list[0].Upvotes != 1 {
		t.Fatalf("expected score 1 / upvotes 1, got %+v", list)
	}
	if list[0].ViewerVote == nil || *list[0].ViewerVote != 1 {
		t.Fatalf("expected viewer vote +1, got %v", list[0].ViewerVote)
	}

	// Repeating the same vote changes nothing.
	if err := f.repo.UpsertVote(ctx, pick.ID, f.member, 1); err != nil {
		t.Fatalf("repeat vote: %v", err)
	}
	list = listVisible(t, f, f.member)
	if list[0].Score != 1 {
		t.Fatalf("expected score unchanged at 1, got %d", list[0].Score)
	}

	// A votes -1 -> score 0.
	if err := f.repo.UpsertVote(ctx, pick.ID, f.ownerID, -1); err != nil {
		t.Fatalf("counter vote: %v", err)
	}
	list = listVisible(t, f, f.ownerID)
	if list[0].Score != 0 || list[0].Downvotes != 1 {
		t.Fatalf("expected score 0 / downvotes 1, got %+v", list[0])
	}

	// B marks watched -> 1 of 2, still visible.
	if err := f.repo.InsertWatchMark(ctx, pick.ID, f.member); err != nil {
		t.Fatalf("watch: %v", err)
	}
	// A second mark by the same user increments nothing.
	if err := f.repo.InsertWatchMark(ctx, pick.ID, f.member); err != nil {
		t.Fatalf("repeat watch: %v", err)
	}
	list = listVisible(t, f, f.member)
	if len(list) != 1 {
		t.Fatalf("expected pick still visible, got %d rows", len(list))
	}
	if list[0].WatchedCount != 1 || list[0].RequiredWatchedCount != 2 {
		t.Fatalf("expected watched 1 of 2, got %d of %d", list[0].WatchedCount, list[0].RequiredWatchedCount)
	}
	if !list[0].ViewerWatched {
		t.Fatal("expected viewer_watched true for the watcher")
	}

	// A marks watched -> threshold met, hidden for everyone.
	if err := f.repo.InsertWatchMark(ctx, pick.ID, f.ownerID); err != nil {
		t.Fatalf("final watch: %v", err)
	}
	for _, viewer := range []uuid.UUID{f.ownerID, f.member} {
		if got := listVisible(t, f, viewer); len(got) != 0 {
			t.Fatalf("expected pick hidden for %s, got %d rows", viewer, len(got))
		}
	}
}

func TestDeleteVoteThenAbsentIsNoop(t *testing.T) {
	f := setupGroup(t)
	ctx := context.Background()
	pick := addPick(t, f, "Dune", "7")

	if err := f.repo.UpsertVote(ctx, pick.ID, f.member, -1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := f.repo.DeleteVote(ctx, pick.ID, f.member); err != nil {
		t.Fatalf("delete vote: %v", err)
	}
	if err := f.repo.DeleteVote(ctx, pick.ID, f.member); err != nil {
		t.Fatalf("delete absent vote: %v", err)
	}

	list := listVisible(t, f, f.member)
	if list[0].Score != 0 || list[0].ViewerVote != nil {
		t.Fatalf("expected cleared vote, got %+v", list[0])
	}
}

func TestVisibleOrderScoreThenRecency(t *testing.T) {
	f := setupGroup(t)
	ctx := context.Background()

	low := addPick(t, f, "Old Low", "1")
	high := addPick(t, f, "High", "2")
	if err := f.repo.UpsertVote(ctx, high.ID, f.member, 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	_ = low

	list := listVisible(t, f, f.member)
	if len(list) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(list))
	}
	if list[0].ID != high.ID {
		t.Fatalf("expected highest score first, got %s", list[0].Media.Title)
	}
}

func TestSoloGroupThresholdFloorsAtOne(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	ctx := context.Background()
	owner := createTestUser(t, tx, "solo")
	group := &models.Group{Name: "Solo Night", OwnerID: owner.ID}
	if err := tx.Create(group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	membership := &models.GroupMembership{GroupID: group.ID, UserID: owner.ID, Role: enums.MemberRoleOwner}
	if err := tx.Create(membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}

	f := fixture{tx: tx, repo: NewRepository(tx), group: group, ownerID: owner.ID, member: owner.ID}
	pick := addPick(t, f, "Stalker", "11")

	list := listVisible(t, f, owner.ID)
	if len(list) != 1 || list[0].RequiredWatchedCount != 1 {
		t.Fatalf("expected sole member threshold of 1, got %+v", list)
	}

	if err := f.repo.InsertWatchMark(ctx, pick.ID, owner.ID); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := listVisible(t, f, owner.ID); len(got) != 0 {
		t.Fatalf("expected pick hidden after the only member watched it, got %d rows", len(got))
	}
}

func listVisible(t *testing.T, f fixture, viewer uuid.UUID) []PickDTO {
	t.Helper()
	list, err := f.repo.ListVisible(context.Background(), f.group.ID, viewer)
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	return list
}
