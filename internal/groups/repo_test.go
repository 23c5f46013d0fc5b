//go:build db
// +build db

package groups

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

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

func TestRepositoryGroupLifecycle(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createTestUser(t, tx, "owner")
	member := createTestUser(t, tx, "member")

	group := &models.Group{Name: "Movie Night", OwnerID: owner.ID}
	if err := repo.CreateGroup(ctx, group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := repo.CreateMembership(ctx, group.ID, owner.ID, enums.MemberRoleOwner); err != nil {
		t.Fatalf("create owner membership: %v", err)
	}
	if _, err := repo.CreateMembership(ctx, group.ID, member.ID, enums.MemberRoleMember); err != nil {
		t.Fatalf("create member membership: %v", err)
	}

	count, err := repo.MemberCount(ctx, group.ID)
	if err != nil {
		t.Fatalf("member count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 members, got %d", count)
	}

	members, err := repo.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 member rows, got %d", len(members))
	}
	if members[0].Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner first, got %s", members[0].Role)
	}

	groupsList, err := repo.ListUserGroups(ctx, member.ID)
	if err != nil {
		t.Fatalf("list user groups: %v", err)
	}
	if len(groupsList) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groupsList))
	}
	if groupsList[0].MemberCount != 2 {
		t.Fatalf("expected member_count 2, got %d", groupsList[0].MemberCount)
	}

	if _, err := repo.CreateMembership(ctx, group.ID, member.ID, enums.MemberRoleMember); err == nil {
		t.Fatal("expected duplicate membership to fail")
	}
}

func TestRepositoryInviteFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createTestUser(t, tx, "owner")
	invitee := createTestUser(t, tx, "invitee")

	group := &models.Group{Name: "Docs Club", OwnerID: owner.ID}
	if err := repo.CreateGroup(ctx, group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := repo.CreateMembership(ctx, group.ID, owner.ID, enums.MemberRoleOwner); err != nil {
		t.Fatalf("create owner membership: %v", err)
	}

	invite, err := repo.CreateInvite(ctx, group.ID, owner.ID, invitee.ID)
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if invite.Status != enums.InviteStatusPending {
		t.Fatalf("expected pending invite, got %s", invite.Status)
	}

	// Second pending invite for the same invitee must hit the partial unique index.
	if _, err := repo.CreateInvite(ctx, group.ID, owner.ID, invitee.ID); err == nil {
		t.Fatal("expected duplicate pending invite to fail")
	}

	incoming, err := repo.ListIncomingInvites(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("list incoming invites: %v", err)
	}
	if len(incoming) != 1 || incoming[0].GroupName != group.Name {
		t.Fatalf("unexpected incoming invites: %+v", incoming)
	}

	resolved, err := repo.ResolveInvite(ctx, invite.ID, enums.InviteStatusRejected, time.Now().UTC())
	if err != nil {
		t.Fatalf("resolve invite: %v", err)
	}
	if !resolved {
		t.Fatal("expected invite to resolve")
	}

	// A resolved invite cannot be consumed twice.
	resolved, err = repo.ResolveInvite(ctx, invite.ID, enums.InviteStatusAccepted, time.Now().UTC())
	if err != nil {
		t.Fatalf("resolve invite again: %v", err)
	}
	if resolved {
		t.Fatal("expected second resolve to be a no-op")
	}

	// After rejection the invitee can be invited again.
	if _, err := repo.CreateInvite(ctx, group.ID, owner.ID, invitee.ID); err != nil {
		t.Fatalf("re-invite after rejection: %v", err)
	}
}

func TestRepositoryDeleteMembership(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	owner := createTestUser(t, tx, "owner")
	member := createTestUser(t, tx, "member")

	group := &models.Group{Name: "Leavers", OwnerID: owner.ID}
	if err := repo.CreateGroup(ctx, group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := repo.CreateMembership(ctx, group.ID, member.ID, enums.MemberRoleMember); err != nil {
		t.Fatalf("create membership: %v", err)
	}

	removed, err := repo.DeleteMembership(ctx, group.ID, member.ID)
	if err != nil {
		t.Fatalf("delete membership: %v", err)
	}
	if !removed {
		t.Fatal("expected membership to be removed")
	}

	removed, err = repo.DeleteMembership(ctx, group.ID, member.ID)
	if err != nil {
		t.Fatalf("delete membership again: %v", err)
	}
	if removed {
		t.Fatal("expected second delete to report no rows")
	}
}
