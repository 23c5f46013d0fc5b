package friends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/pkg/config"
)

// Friend is a single entry in a user's friend list.
type Friend struct {
	ID          uuid.UUID `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
}

// Directory resolves a user's friend list. The friend graph lives in a
// separate service; this boundary only reads from it.
type Directory interface {
	Friends(ctx context.Context, userID uuid.UUID) ([]Friend, error)
}

// HTTPDirectory queries the friend-graph service over HTTP.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory builds a directory client from config.
func NewHTTPDirectory(cfg config.FriendsConfig) (*HTTPDirectory, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("friends base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid friends base url: %w", err)
	}
	return &HTTPDirectory{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (d *HTTPDirectory) Friends(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s/friends", d.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build friends request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch friends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("friends service returned %d", resp.StatusCode)
	}

	var payload struct {
		Data []Friend `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode friends response: %w", err)
	}
	return payload.Data, nil
}

// StaticDirectory serves a fixed friend list. Used in tests and local dev
// when no friend-graph service is running.
type StaticDirectory struct {
	ByUser map[uuid.UUID][]Friend
}

func (d *StaticDirectory) Friends(_ context.Context, userID uuid.UUID) ([]Friend, error) {
	if d == nil || d.ByUser == nil {
		return nil, nil
	}
	return d.ByUser[userID], nil
}
