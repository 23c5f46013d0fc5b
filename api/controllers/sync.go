package controllers

import (
	"net/http"

	"github.com/reelmates/reelmates-backend/api/responses"
	"github.com/reelmates/reelmates-backend/pkg/config"
)

type syncConfigResponse struct {
	MessagesIntervalMS int64 `json:"messages_interval_ms"`
	PicksIntervalMS    int64 `json:"picks_interval_ms"`
	InvitesIntervalMS  int64 `json:"invites_interval_ms"`
}

// SyncConfig hands clients the polling cadences their sync driver should use.
func SyncConfig(cfg config.SyncConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, syncConfigResponse{
			MessagesIntervalMS: cfg.MessagesInterval.Milliseconds(),
			PicksIntervalMS:    cfg.PicksInterval.Milliseconds(),
			InvitesIntervalMS:  cfg.InvitesInterval.Milliseconds(),
		})
	}
}
