package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// PathService requests connecting paths from the backend's /api/path endpoint.
type PathService struct {
	api    *APIService
	logger *log.Logger
}

// NewPathService creates a [PathService]. A nil logger discards diagnostics.
func NewPathService(api *APIService, logger *log.Logger) *PathService {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PathService{api: api, logger: logger}
}

type stepPayload struct {
	FromID   flexID  `json:"from_id"`
	ToID     flexID  `json:"to_id"`
	FromName *string `json:"from_name"`
	ToName   *string `json:"to_name"`
	Track    *string `json:"track"`
	ToMBID   *string `json:"to_mbid"`
}

type pathPayload struct {
	Found   bool          `json:"found"`
	Seconds float64       `json:"seconds"`
	Degrees int           `json:"degrees"`
	Path    []stepPayload `json:"path"`
}

// FindPath posts req and classifies the answer.
//
// Transport errors, undecodable bodies and non-2xx statuses are [models.OutcomeFailed];
// the result message carries the backend's detail/error string when present.
func (s *PathService) FindPath(ctx context.Context, req models.PathRequest) models.PathResult {
	resp, err := s.api.PostJSON(ctx, "/api/path", req)
	if err != nil {
		s.logger.Error("path request failed", "source", req.SourceID, "target", req.TargetID, "error", err)
		return models.Failed("")
	}

	if !resp.OK() {
		detail := resp.ErrorDetail()
		s.logger.Warn("path request rejected", "status", resp.StatusCode, "detail", detail)
		return models.Failed(detail)
	}

	var payload pathPayload
	if err := resp.Decode(&payload); err != nil {
		s.logger.Error("malformed path response", "error", err)
		return models.Failed("")
	}

	if !payload.Found || len(payload.Path) == 0 {
		return models.NotFound(payload.Seconds)
	}

	path, err := normalizePath(payload.Path)
	if err != nil {
		s.logger.Error("malformed path response", "error", err)
		return models.Failed("")
	}

	s.logger.Debug("path found", "degrees", len(path), "seconds", payload.Seconds, "excluded", len(req.ExcludeEdges))
	return models.Found(path, payload.Seconds)
}

// normalizePath converts the wire steps into immutable [models.ConnectionStep] values.
func normalizePath(steps []stepPayload) (models.Path, error) {
	path := make(models.Path, 0, len(steps))
	for i, st := range steps {
		if st.FromID == 0 || st.ToID == 0 {
			return nil, fmt.Errorf("%w: step %d is missing an artist id", shared.ErrUnexpectedResponse, i)
		}
		path = append(path, models.ConnectionStep{
			FromID:   int64(st.FromID),
			ToID:     int64(st.ToID),
			FromName: optString(st.FromName),
			ToName:   optString(st.ToName),
			Track:    optString(st.Track),
			ToMBID:   optString(st.ToMBID),
		})
	}
	return path, nil
}
