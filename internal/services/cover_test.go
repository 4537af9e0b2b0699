package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sdos/internal/shared"
)

func TestCoverService(t *testing.T) {
	tc := []struct {
		name    string
		status  int
		body    string
		cover   string
		preview string
		err     error
	}{
		{name: "both", status: 200, body: `{"cover": "http://c", "preview": "http://p"}`, cover: "http://c", preview: "http://p"},
		{name: "cover only", status: 200, body: `{"cover": "http://c", "preview": null}`, cover: "http://c"},
		{name: "nothing", status: 200, body: `{"cover": null, "preview": null}`, err: shared.ErrNotFound},
		{name: "server error", status: 500, body: `{}`, err: shared.ErrAPIRequest},
		{name: "malformed", status: 200, body: `<html>`, err: shared.ErrUnexpectedResponse},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/cover" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("track") != "TrackX" || r.URL.Query().Get("artist") != "ArtistY" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			info, err := NewCoverService(NewAPIService(server.URL, nil)).Lookup(context.Background(), "TrackX", "ArtistY")
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if info.Cover != tt.cover || info.Preview != tt.preview {
				t.Errorf("unexpected info %+v", info)
			}
		})
	}
}
