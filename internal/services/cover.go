package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// CoverService is the backend's media proxy, GET /api/cover.
type CoverService struct {
	api *APIService
}

func NewCoverService(api *APIService) *CoverService {
	return &CoverService{api: api}
}

func (c *CoverService) Name() string { return "cover-proxy" }

type coverPayload struct {
	Cover   *string `json:"cover"`
	Preview *string `json:"preview"`
}

// Lookup asks the proxy for track by artist. An answer with neither URL is [shared.ErrNotFound].
func (c *CoverService) Lookup(ctx context.Context, track, artist string) (models.MediaInfo, error) {
	resp, err := c.api.GetQuery(ctx, "/api/cover", url.Values{
		"track":  {track},
		"artist": {artist},
	})
	if err != nil {
		return models.MediaInfo{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return models.MediaInfo{}, fmt.Errorf("%w: cover proxy returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var payload coverPayload
	if err := resp.Decode(&payload); err != nil {
		return models.MediaInfo{}, fmt.Errorf("%w: %v", shared.ErrUnexpectedResponse, err)
	}

	info := models.MediaInfo{Cover: optString(payload.Cover), Preview: optString(payload.Preview)}
	if info.IsZero() {
		return models.MediaInfo{}, shared.ErrNotFound
	}
	return info, nil
}
