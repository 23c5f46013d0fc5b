package types

import (
	"strings"

	"github.com/reelmates/reelmates-backend/pkg/enums"
)

// MediaRef is the denormalized catalog snapshot attached to picks and shared
// messages. The values are caller-provided at creation time and stored
// verbatim; the core never re-resolves them against the catalog.
type MediaRef struct {
	MediaType enums.MediaType `json:"media_type"`
	MediaID   string          `json:"media_id"`
	Title     string          `json:"title"`
	Poster    string          `json:"poster,omitempty"`
	Year      int             `json:"year,omitempty"`
}

// Validate reports whether the reference carries the minimum catalog fields.
func (m MediaRef) Validate() bool {
	return m.MediaType.IsValid() &&
		strings.TrimSpace(m.MediaID) != "" &&
		strings.TrimSpace(m.Title) != ""
}
