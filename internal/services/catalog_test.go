package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sdos/internal/shared"
)

func TestCatalogService(t *testing.T) {
	t.Run("Lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if r.URL.Path != "/search" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if q.Get("term") != "Song1 Artist A" || q.Get("entity") != "song" || q.Get("limit") != "1" || q.Get("country") != "GB" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"resultCount": 1, "results": [{
				"artworkUrl100": "https://is1.example.com/image/thumb/100x100bb.jpg",
				"previewUrl": "https://audio.example.com/preview.m4a"
			}]}`))
		}))
		defer server.Close()

		svc := NewCatalogService(CatalogOptions{BaseURL: server.URL, Country: "GB"})
		info, err := svc.Lookup(context.Background(), "Song1", "Artist A")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if info.Cover != "https://is1.example.com/image/thumb/600x600bb.jpg" {
			t.Errorf("expected upscaled artwork, got %s", info.Cover)
		}
		if info.Preview != "https://audio.example.com/preview.m4a" {
			t.Errorf("unexpected preview %s", info.Preview)
		}
	})

	t.Run("No Results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"resultCount": 0, "results": []}`))
		}))
		defer server.Close()

		_, err := NewCatalogService(CatalogOptions{BaseURL: server.URL}).Lookup(context.Background(), "x", "y")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewCatalogService(CatalogOptions{BaseURL: server.URL}).Lookup(context.Background(), "x", "y")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Limiter Honors Context", func(t *testing.T) {
		svc := NewCatalogService(CatalogOptions{BaseURL: "http://127.0.0.1:0", RateLimit: 0.001, Burst: 1})
		// drain the single token
		svc.limiter.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := svc.Lookup(ctx, "x", "y"); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestUpscaleArtwork(t *testing.T) {
	tc := []struct {
		name string
		in   string
		size int
		want string
	}{
		{name: "default size", in: "https://x/100x100bb.jpg", size: 600, want: "https://x/600x600bb.jpg"},
		{name: "custom size", in: "https://x/100x100bb.jpg", size: 1200, want: "https://x/1200x1200bb.jpg"},
		{name: "no size segment", in: "https://x/cover.jpg", size: 600, want: "https://x/cover.jpg"},
		{name: "empty", in: "", size: 600, want: ""},
		{name: "zero size", in: "https://x/100x100bb.jpg", size: 0, want: "https://x/100x100bb.jpg"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpscaleArtwork(tt.in, tt.size); got != tt.want {
				t.Errorf("UpscaleArtwork() = %s, want %s", got, tt.want)
			}
		})
	}
}
