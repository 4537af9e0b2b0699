package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/desertthunder/sdos/internal/models"
)

// PathFinder requests a path between two artists.
//
// Implementations never return an error: failures are reported as [models.OutcomeFailed].
type PathFinder interface {
	FindPath(ctx context.Context, req models.PathRequest) models.PathResult
}

// ArtistSearcher looks up artists by free-text name.
type ArtistSearcher interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]models.ArtistMatch, error)
}

// MediaLookup resolves a track/artist pair to media URLs. It is one tier of the media resolver.
type MediaLookup interface {
	Lookup(ctx context.Context, track, artist string) (models.MediaInfo, error)
	Name() string
}

// flexID accepts ids encoded either as JSON numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var fl float64
		if ferr := json.Unmarshal([]byte(s), &fl); ferr != nil {
			return err
		}
		n = int64(fl)
	}
	*f = flexID(n)
	return nil
}

// optString reads a nullable JSON string.
func optString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
