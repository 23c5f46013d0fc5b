package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/internal/groups"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	pkgerrors "github.com/reelmates/reelmates-backend/pkg/errors"
)

type stubGroupService struct {
	group      *groups.GroupDTO
	groupList  []groups.GroupDTO
	members    []groups.MemberDTO
	invites    []groups.InviteDTO
	candidates []groups.CandidateDTO
	invite     *models.GroupInvite
	accepted   *groups.AcceptedInviteDTO
	err        error
}

func (s stubGroupService) CreateGroup(_ context.Context, _ uuid.UUID, _ groups.CreateGroupRequest) (*groups.GroupDTO, error) {
	return s.group, s.err
}

func (s stubGroupService) UpdateGroup(_ context.Context, _, _ uuid.UUID, _ groups.UpdateGroupRequest) (*groups.GroupDTO, error) {
	return s.group, s.err
}

func (s stubGroupService) LeaveGroup(_ context.Context, _, _ uuid.UUID) error {
	return s.err
}

func (s stubGroupService) InviteMember(_ context.Context, _, _, _ uuid.UUID) (*models.GroupInvite, error) {
	return s.invite, s.err
}

func (s stubGroupService) RespondToInvite(_ context.Context, _, _ uuid.UUID, _ enums.InviteDecision) (*groups.AcceptedInviteDTO, error) {
	return s.accepted, s.err
}

func (s stubGroupService) ListGroups(_ context.Context, _ uuid.UUID) ([]groups.GroupDTO, error) {
	return s.groupList, s.err
}

func (s stubGroupService) ListMembers(_ context.Context, _, _ uuid.UUID) ([]groups.MemberDTO, error) {
	return s.members, s.err
}

func (s stubGroupService) ListIncomingInvites(_ context.Context, _ uuid.UUID) ([]groups.InviteDTO, error) {
	return s.invites, s.err
}

func (s stubGroupService) ListPendingInvites(_ context.Context, _, _ uuid.UUID) ([]groups.InviteDTO, error) {
	return s.invites, s.err
}

func (s stubGroupService) ListInviteCandidates(_ context.Context, _, _ uuid.UUID) ([]groups.CandidateDTO, error) {
	return s.candidates, s.err
}

func TestGroupCreateSuccess(t *testing.T) {
	dto := &groups.GroupDTO{ID: uuid.New(), Name: "Movie Club", MemberCount: 1}
	handler := GroupCreate(stubGroupService{group: dto}, nil)

	req := authedRequest(http.MethodPost, "/v1/groups", uuid.New(), []byte(`{"name":"Movie Club"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	got := decodeData[groups.GroupDTO](t, rec)
	if got.ID != dto.ID || got.Name != "Movie Club" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestGroupCreateRejectsShortName(t *testing.T) {
	handler := GroupCreate(stubGroupService{}, nil)

	req := authedRequest(http.MethodPost, "/v1/groups", uuid.New(), []byte(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGroupCreateMissingIdentity(t *testing.T) {
	handler := GroupCreate(stubGroupService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/groups", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestGroupUpdateForbiddenPassesThrough(t *testing.T) {
	handler := GroupUpdate(stubGroupService{err: pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can update the group")}, nil)

	req := authedRequest(http.MethodPatch, "/v1/groups/abc", uuid.New(), []byte(`{"name":"New Name"}`))
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestGroupLeaveInvalidGroupID(t *testing.T) {
	handler := GroupLeave(stubGroupService{}, nil)

	req := authedRequest(http.MethodDelete, "/v1/groups/nope/membership", uuid.New(), nil)
	req = withRouteParam(req, "groupId", "nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGroupMembersSuccess(t *testing.T) {
	members := []groups.MemberDTO{{Role: enums.MemberRoleOwner}, {Role: enums.MemberRoleMember}}
	handler := GroupMembers(stubGroupService{members: members}, nil)

	req := authedRequest(http.MethodGet, "/v1/groups/x/members", uuid.New(), nil)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	got := decodeData[[]groups.MemberDTO](t, rec)
	if len(got) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got))
	}
}

func TestInviteCreateConflictPassesThrough(t *testing.T) {
	handler := InviteCreate(stubGroupService{err: pkgerrors.New(pkgerrors.CodeConflict, "user already has a pending invite")}, nil)

	body := []byte(`{"invitee_id":"` + uuid.NewString() + `"}`)
	req := authedRequest(http.MethodPost, "/v1/groups/x/invites", uuid.New(), body)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestInviteRespondSuccess(t *testing.T) {
	accepted := &groups.AcceptedInviteDTO{
		InviteID: uuid.New(),
		GroupID:  uuid.New(),
		Status:   enums.InviteStatusAccepted,
	}
	handler := InviteRespond(stubGroupService{accepted: accepted}, nil)

	req := authedRequest(http.MethodPost, "/v1/invites/x/respond", uuid.New(), []byte(`{"decision":"accept"}`))
	req = withRouteParam(req, "inviteId", accepted.InviteID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	got := decodeData[groups.AcceptedInviteDTO](t, rec)
	if got.GroupID != accepted.GroupID {
		t.Fatalf("expected group id echoed for context switch, got %+v", got)
	}
}

func TestInviteRespondRejectsBadDecision(t *testing.T) {
	handler := InviteRespond(stubGroupService{}, nil)

	req := authedRequest(http.MethodPost, "/v1/invites/x/respond", uuid.New(), []byte(`{"decision":"maybe"}`))
	req = withRouteParam(req, "inviteId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
