package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
	tu "github.com/desertthunder/sdos/internal/testing"
)

func TestSearchService(t *testing.T) {
	t.Run("SearchArtists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/search" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("q") != "radio" || r.URL.Query().Get("limit") != "10" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[
				{"id": 1, "name": "Radiohead", "gid": "a74b1b7f", "release_count": 120},
				{"id": 2, "name": "Radio Birdman", "gid": null, "release_count": 14}
			]`))
		}))
		defer server.Close()

		svc := NewSearchService(NewAPIService(server.URL, nil), nil)
		matches, err := svc.SearchArtists(context.Background(), " radio ", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(matches) != 2 || matches[0].Name != "Radiohead" || matches[1].GID != "" {
			t.Errorf("unexpected matches %+v", matches)
		}
	})

	t.Run("Blank Query Skips Request", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("should not be called"))}
		matches, err := NewSearchService(NewAPIService("http://example.com", client), nil).SearchArtists(context.Background(), "   ", 5)
		if err != nil || len(matches) != 0 {
			t.Errorf("expected empty result, got %v, %v", matches, err)
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail": "q too short"}`))
		}))
		defer server.Close()

		_, err := NewSearchService(NewAPIService(server.URL, nil), nil).SearchArtists(context.Background(), "r", 5)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestBestMatch(t *testing.T) {
	matches := []models.ArtistMatch{
		{ID: 1, Name: "The Beatles", ReleaseCount: 300},
		{ID: 2, Name: "Beatles Revival Band", ReleaseCount: 3},
		{ID: 3, Name: "the beatles", ReleaseCount: 1},
	}

	t.Run("Exact Match Prefers More Releases", func(t *testing.T) {
		got, err := BestMatch("THE BEATLES", matches)
		if err != nil {
			t.Fatalf("expected match, got %v", err)
		}
		if got.ID != 1 {
			t.Errorf("expected id 1, got %d", got.ID)
		}
	})

	t.Run("Fuzzy Match", func(t *testing.T) {
		got, err := BestMatch("Beatles", matches)
		if err != nil {
			t.Fatalf("expected match, got %v", err)
		}
		if got.ID != 1 {
			t.Errorf("expected closest name (id 1), got %d", got.ID)
		}
	})

	t.Run("No Match", func(t *testing.T) {
		if _, err := BestMatch("Miles Davis", matches); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
		if _, err := BestMatch("anything", nil); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch for empty matches, got %v", err)
		}
	})
}

func TestResolveArtist(t *testing.T) {
	searcher := &tu.StubSearcher{Matches: []models.ArtistMatch{{ID: 42, Name: "Björk", ReleaseCount: 80}}}

	t.Run("Numeric Id", func(t *testing.T) {
		a, err := ResolveArtist(context.Background(), searcher, "10", 5)
		if err != nil || a.ID != 10 {
			t.Errorf("expected id 10, got %+v, %v", a, err)
		}
		if len(searcher.Queries) != 0 {
			t.Error("numeric id should not search")
		}
	})

	t.Run("Name", func(t *testing.T) {
		a, err := ResolveArtist(context.Background(), searcher, "bjork", 5)
		if err != nil {
			t.Fatalf("expected match, got %v", err)
		}
		if a.ID != 42 || a.Name != "Björk" {
			t.Errorf("unexpected artist %+v", a)
		}
	})

	t.Run("Blank", func(t *testing.T) {
		if _, err := ResolveArtist(context.Background(), searcher, " ", 5); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
