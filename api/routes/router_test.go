package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reelmates/reelmates-backend/internal/groups"
	pkgauth "github.com/reelmates/reelmates-backend/pkg/auth"
	"github.com/reelmates/reelmates-backend/pkg/auth/session"
	"github.com/reelmates/reelmates-backend/pkg/config"
	"github.com/reelmates/reelmates-backend/pkg/db/models"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"github.com/reelmates/reelmates-backend/pkg/logger"
)

type stubGroupService struct {
	groupList []groups.GroupDTO
}

func (s stubGroupService) CreateGroup(_ context.Context, _ uuid.UUID, _ groups.CreateGroupRequest) (*groups.GroupDTO, error) {
	return nil, nil
}

func (s stubGroupService) UpdateGroup(_ context.Context, _, _ uuid.UUID, _ groups.UpdateGroupRequest) (*groups.GroupDTO, error) {
	return nil, nil
}

func (s stubGroupService) LeaveGroup(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (s stubGroupService) InviteMember(_ context.Context, _, _, _ uuid.UUID) (*models.GroupInvite, error) {
	return nil, nil
}

func (s stubGroupService) RespondToInvite(_ context.Context, _, _ uuid.UUID, _ enums.InviteDecision) (*groups.AcceptedInviteDTO, error) {
	return nil, nil
}

func (s stubGroupService) ListGroups(_ context.Context, _ uuid.UUID) ([]groups.GroupDTO, error) {
	return s.groupList, nil
}

func (s stubGroupService) ListMembers(_ context.Context, _, _ uuid.UUID) ([]groups.MemberDTO, error) {
	return nil, nil
}

func (s stubGroupService) ListIncomingInvites(_ context.Context, _ uuid.UUID) ([]groups.InviteDTO, error) {
	return nil, nil
}

func (s stubGroupService) ListPendingInvites(_ context.Context, _, _ uuid.UUID) ([]groups.InviteDTO, error) {
	return nil, nil
}

func (s stubGroupService) ListInviteCandidates(_ context.Context, _, _ uuid.UUID) ([]groups.CandidateDTO, error) {
	return nil, nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "reelmates-test",
			ExpirationMinutes: 15,
		},
		Sync: config.SyncConfig{
			MessagesInterval: 12 * time.Second,
			PicksInterval:    10 * time.Second,
			InvitesInterval:  8 * time.Second,
		},
	}
}

func buildRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:       cfg,
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Sessions:     stubSessionChecker{},
		Registry:     prometheus.NewRegistry(),
		GroupService: stubGroupService{groupList: []groups.GroupDTO{}},
	})
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Handle: "alice",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := buildRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-ReelMates-Env") != "dev" {
		t.Fatal("expected env header set")
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := buildRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := buildRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/v1/groups/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestProtectedRouteAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	router := buildRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/groups/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestSyncConfigExposesCadences(t *testing.T) {
	cfg := testConfig()
	router := buildRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/sync/config", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
