package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelmates/reelmates-backend/api/controllers"
	"github.com/reelmates/reelmates-backend/api/middleware"
	"github.com/reelmates/reelmates-backend/internal/auth"
	"github.com/reelmates/reelmates-backend/internal/chat"
	"github.com/reelmates/reelmates-backend/internal/groups"
	"github.com/reelmates/reelmates-backend/internal/picks"
	"github.com/reelmates/reelmates-backend/pkg/auth/session"
	"github.com/reelmates/reelmates-backend/pkg/config"
	"github.com/reelmates/reelmates-backend/pkg/logger"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	AuthService  auth.Service
	GroupService groups.Service
	PickService  picks.Service
	ChatService  chat.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": params.DB,
			"redis":    params.Redis,
		}))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(params.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(params.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(params.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, params.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(params.AuthService, logg))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, params.Sessions, logg))

		r.Get("/sync/config", controllers.SyncConfig(cfg.Sync))

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", controllers.GroupCreate(params.GroupService, logg))
			r.Get("/", controllers.GroupList(params.GroupService, logg))

			r.Route("/{groupId}", func(r chi.Router) {
				r.Patch("/", controllers.GroupUpdate(params.GroupService, logg))
				r.Delete("/membership", controllers.GroupLeave(params.GroupService, logg))
				r.Get("/members", controllers.GroupMembers(params.GroupService, logg))

				r.Post("/invites", controllers.InviteCreate(params.GroupService, logg))
				r.Get("/invites", controllers.InvitePendingList(params.GroupService, logg))
				r.Get("/invite-candidates", controllers.GroupInviteCandidates(params.GroupService, logg))

				r.Post("/picks", controllers.PickAdd(params.PickService, logg))
				r.Get("/picks", controllers.PickList(params.PickService, logg))

				r.Post("/messages", controllers.MessageSend(params.ChatService, logg))
				r.Get("/messages", controllers.MessageList(params.ChatService, logg))
				r.Get("/messages/unseen", controllers.MessageUnseenCount(params.ChatService, logg))
			})
		})

		r.Route("/invites", func(r chi.Router) {
			r.Get("/incoming", controllers.InviteIncomingList(params.GroupService, logg))
			r.Post("/{inviteId}/respond", controllers.InviteRespond(params.GroupService, logg))
		})

		r.Route("/picks/{pickId}", func(r chi.Router) {
			r.Post("/vote", controllers.PickVote(params.PickService, logg))
			r.Delete("/vote", controllers.PickClearVote(params.PickService, logg))
			r.Post("/watched", controllers.PickMarkWatched(params.PickService, logg))
		})

		r.Post("/messages/{messageId}/reactions", controllers.ReactionToggle(params.ChatService, logg))
	})

	return r
}
