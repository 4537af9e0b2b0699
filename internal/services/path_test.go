package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/sdos/internal/models"
	tu "github.com/desertthunder/sdos/internal/testing"
)

func newPathServer(t *testing.T, status int, body string, check func(models.PathRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/path" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req models.PathRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if check != nil {
			check(req)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPathService(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		body := `{"found": true, "seconds": 0.12, "degrees": 2, "path": [
			{"from_id": 10, "to_id": 15, "from_name": "A", "to_name": "B", "to_mbid": null, "track": "Song1"},
			{"from_id": "15", "to_id": 20, "from_name": "B", "to_name": "C", "to_mbid": "mbid-c", "track": null}
		]}`
		server := newPathServer(t, http.StatusOK, body, func(req models.PathRequest) {
			if req.SourceID != 10 || req.TargetID != 20 {
				t.Errorf("unexpected request %+v", req)
			}
			if len(req.ExcludeEdges) != 1 || req.ExcludeEdges[0] != models.NewEdge(10, 15) {
				t.Errorf("expected exclusion {10,15}, got %v", req.ExcludeEdges)
			}
		})

		svc := NewPathService(NewAPIService(server.URL, nil), nil)
		res := svc.FindPath(context.Background(), models.PathRequest{
			SourceID: 10, TargetID: 20, ExcludeEdges: []models.Edge{models.NewEdge(15, 10)},
		})

		if res.Outcome != models.OutcomeFound {
			t.Fatalf("expected found, got %v (%s)", res.Outcome, res.Message)
		}
		if res.Path.Signature() != "10->15|15->20" {
			t.Errorf("unexpected signature %s", res.Path.Signature())
		}
		if res.Path[1].Track != "" || res.Path[1].ToMBID != "mbid-c" {
			t.Errorf("unexpected second step %+v", res.Path[1])
		}
		if res.Seconds != 0.12 {
			t.Errorf("expected seconds 0.12, got %v", res.Seconds)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		for name, body := range map[string]string{
			"found false": `{"found": false, "seconds": 1.5, "path": []}`,
			"empty path":  `{"found": true, "path": []}`,
		} {
			t.Run(name, func(t *testing.T) {
				server := newPathServer(t, http.StatusOK, body, nil)
				res := NewPathService(NewAPIService(server.URL, nil), nil).FindPath(context.Background(), models.PathRequest{SourceID: 1, TargetID: 2})
				if res.Outcome != models.OutcomeNotFound {
					t.Errorf("expected not found, got %v", res.Outcome)
				}
			})
		}
	})

	t.Run("Failures", func(t *testing.T) {
		tc := []struct {
			name    string
			status  int
			body    string
			message string
		}{
			{name: "detail", status: http.StatusNotFound, body: `{"detail": "One or more artists not present"}`, message: "One or more artists not present"},
			{name: "error key", status: http.StatusInternalServerError, body: `{"error": "graph loading"}`, message: "graph loading"},
			{name: "no body", status: http.StatusBadGateway, body: ``, message: ""},
			{name: "malformed", status: http.StatusOK, body: `{"found": tru`, message: ""},
			{name: "missing ids", status: http.StatusOK, body: `{"found": true, "path": [{"from_name": "A"}]}`, message: ""},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				server := newPathServer(t, tt.status, tt.body, nil)
				res := NewPathService(NewAPIService(server.URL, nil), nil).FindPath(context.Background(), models.PathRequest{SourceID: 1, TargetID: 2})
				if res.Outcome != models.OutcomeFailed {
					t.Fatalf("expected failed, got %v", res.Outcome)
				}
				if res.Message != tt.message {
					t.Errorf("expected message %q, got %q", tt.message, res.Message)
				}
			})
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		res := NewPathService(NewAPIService("http://example.com", client), nil).FindPath(context.Background(), models.PathRequest{SourceID: 1, TargetID: 2})
		if res.Outcome != models.OutcomeFailed || res.Message != "" {
			t.Errorf("expected bare failure, got %+v", res)
		}
	})
}
