package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/reelmates/reelmates-backend/internal/picks"
	pkgerrors "github.com/reelmates/reelmates-backend/pkg/errors"
)

type stubPickService struct {
	pick     *picks.PickDTO
	pickList []picks.PickDTO
	err      error

	lastVote int
}

func (s *stubPickService) AddPick(_ context.Context, _, _ uuid.UUID, _ picks.AddPickRequest) (*picks.PickDTO, error) {
	return s.pick, s.err
}

func (s *stubPickService) Vote(_ context.Context, _, _ uuid.UUID, value int) error {
	s.lastVote = value
	return s.err
}

func (s *stubPickService) ClearVote(_ context.Context, _, _ uuid.UUID) error {
	return s.err
}

func (s *stubPickService) MarkWatched(_ context.Context, _, _ uuid.UUID) error {
	return s.err
}

func (s *stubPickService) ListVisible(_ context.Context, _, _ uuid.UUID) ([]picks.PickDTO, error) {
	return s.pickList, s.err
}

func TestPickAddSuccess(t *testing.T) {
	dto := &picks.PickDTO{ID: uuid.New(), RequiredWatchedCount: 2}
	handler := PickAdd(&stubPickService{pick: dto}, nil)

	body := []byte(`{"media_type":"movie","media_id":"42","title":"Arrival","year":2016}`)
	req := authedRequest(http.MethodPost, "/v1/groups/x/picks", uuid.New(), body)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	got := decodeData[picks.PickDTO](t, rec)
	if got.ID != dto.ID {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPickAddDuplicateConflict(t *testing.T) {
	handler := PickAdd(&stubPickService{err: pkgerrors.New(pkgerrors.CodeConflict, "already in group picks")}, nil)

	body := []byte(`{"media_type":"movie","media_id":"42","title":"Arrival"}`)
	req := authedRequest(http.MethodPost, "/v1/groups/x/picks", uuid.New(), body)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestPickAddRejectsUnknownMediaType(t *testing.T) {
	handler := PickAdd(&stubPickService{}, nil)

	body := []byte(`{"media_type":"book","media_id":"42","title":"Arrival"}`)
	req := authedRequest(http.MethodPost, "/v1/groups/x/picks", uuid.New(), body)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPickVotePassesValueThrough(t *testing.T) {
	svc := &stubPickService{}
	handler := PickVote(svc, nil)

	req := authedRequest(http.MethodPost, "/v1/picks/x/vote", uuid.New(), []byte(`{"value":-1}`))
	req = withRouteParam(req, "pickId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastVote != -1 {
		t.Fatalf("expected vote -1 forwarded, got %d", svc.lastVote)
	}
}

func TestPickVoteRejectsZero(t *testing.T) {
	handler := PickVote(&stubPickService{}, nil)

	req := authedRequest(http.MethodPost, "/v1/picks/x/vote", uuid.New(), []byte(`{"value":0}`))
	req = withRouteParam(req, "pickId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPickListForbiddenForNonMember(t *testing.T) {
	handler := PickList(&stubPickService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this group")}, nil)

	req := authedRequest(http.MethodGet, "/v1/groups/x/picks", uuid.New(), nil)
	req = withRouteParam(req, "groupId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestPickMarkWatchedSuccess(t *testing.T) {
	handler := PickMarkWatched(&stubPickService{}, nil)

	req := authedRequest(http.MethodPost, "/v1/picks/x/watched", uuid.New(), nil)
	req = withRouteParam(req, "pickId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
