package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// DefaultSearchLimit caps autocomplete results when no limit is given.
const DefaultSearchLimit = 10

// MinMatchSimilarity is the lowest name similarity [BestMatch] accepts.
const MinMatchSimilarity = 0.5

// SearchService queries the backend's /api/search endpoint.
type SearchService struct {
	api    *APIService
	logger *log.Logger
}

// NewSearchService creates a [SearchService]. A nil logger discards diagnostics.
func NewSearchService(api *APIService, logger *log.Logger) *SearchService {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &SearchService{api: api, logger: logger}
}

// SearchArtists returns up to limit artists matching query, in backend order.
//
// A blank query returns no results without a request.
func (s *SearchService) SearchArtists(ctx context.Context, query string, limit int) ([]models.ArtistMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.ArtistMatch{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	resp, err := s.api.GetQuery(ctx, "/api/search", url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: search returned status %d %s", shared.ErrAPIRequest, resp.StatusCode, resp.ErrorDetail())
	}

	var matches []models.ArtistMatch
	if err := resp.Decode(&matches); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnexpectedResponse, err)
	}

	s.logger.Debug("artist search", "query", query, "results", len(matches))
	return matches, nil
}

// ResolveArtist turns a user-supplied reference into an artist.
//
// Numeric input is taken as an id; anything else is searched and the best match returned.
func ResolveArtist(ctx context.Context, searcher ArtistSearcher, ref string, limit int) (models.Artist, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Artist{}, fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return models.Artist{ID: id}, nil
	}

	matches, err := searcher.SearchArtists(ctx, ref, limit)
	if err != nil {
		return models.Artist{}, err
	}
	best, err := BestMatch(ref, matches)
	if err != nil {
		return models.Artist{}, err
	}
	return models.Artist{ID: best.ID, Name: best.Name}, nil
}

// BestMatch picks the match whose name is most similar to query.
//
// An exact (case-insensitive) name wins outright; otherwise the highest
// levenshtein similarity wins, ties going to the artist with more releases.
func BestMatch(query string, matches []models.ArtistMatch) (models.ArtistMatch, error) {
	q := foldName(query)
	if q == "" || len(matches) == 0 {
		return models.ArtistMatch{}, fmt.Errorf("%w: %q", shared.ErrNoMatch, query)
	}

	type scored struct {
		match models.ArtistMatch
		score float64
	}

	candidates := make([]scored, 0, len(matches))
	for _, m := range matches {
		name := foldName(m.Name)
		score := levenshtein.Similarity(q, name, nil)
		if name == q {
			score = 2
		}
		candidates = append(candidates, scored{match: m, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].match.ReleaseCount > candidates[j].match.ReleaseCount
	})

	if candidates[0].score < MinMatchSimilarity {
		return models.ArtistMatch{}, fmt.Errorf("%w: %q", shared.ErrNoMatch, query)
	}
	return candidates[0].match, nil
}

func foldName(s string) string {
	return strings.ToLower(shared.NormalizeKey(s))
}
