package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenHistory(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPath(ids ...int64) models.Path {
	path := make(models.Path, 0, len(ids)-1)
	for i := 0; i+1 < len(ids); i++ {
		path = append(path, models.ConnectionStep{
			FromID:   ids[i],
			ToID:     ids[i+1],
			FromName: "artist-" + string(rune('A'+i)),
			ToName:   "artist-" + string(rune('A'+i+1)),
			Track:    "track",
		})
	}
	return path
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "routes")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestRouteRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRouteRepository(db)
		route := models.NewRouteRecord(0, "session-1", testPath(10, 15, 20), 0.5)

		if err := repo.Create(route); err != nil {
			t.Fatalf("failed to create route: %v", err)
		}
		if route.ID() == "" {
			t.Error("route ID should be set after creation")
		}
		if route.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", route.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRouteRepository(db)
		route := models.NewRouteRecord(0, "session-1", testPath(10, 15, 20), 0.5)
		if err := repo.Create(route); err != nil {
			t.Fatalf("failed to create route: %v", err)
		}

		retrieved, err := repo.Get(route.ID())
		if err != nil {
			t.Fatalf("failed to get route: %v", err)
		}

		if retrieved.SessionID() != "session-1" {
			t.Errorf("expected session-1, got %s", retrieved.SessionID())
		}
		if retrieved.Signature() != route.Signature() {
			t.Errorf("expected signature %s, got %s", route.Signature(), retrieved.Signature())
		}
		if retrieved.Source().ID != 10 || retrieved.Target().ID != 20 {
			t.Errorf("unexpected endpoints %+v → %+v", retrieved.Source(), retrieved.Target())
		}
		if retrieved.Seconds() != 0.5 {
			t.Errorf("expected 0.5 seconds, got %v", retrieved.Seconds())
		}
		if retrieved.Degrees() != 2 || retrieved.Path()[1].ToName != "artist-C" {
			t.Errorf("steps not round-tripped: %+v", retrieved.Path())
		}
		if retrieved.CreatedAt().IsZero() {
			t.Error("expected created_at to be set")
		}

		bySeq, err := repo.GetBySequence(route.Sequence())
		if err != nil {
			t.Fatalf("failed to get route by sequence: %v", err)
		}
		if bySeq.ID() != route.ID() {
			t.Errorf("expected %s, got %s", route.ID(), bySeq.ID())
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRouteRepository(db)

		routes := []*models.RouteRecord{
			models.NewRouteRecord(0, "s1", testPath(10, 15, 20), 0),
			models.NewRouteRecord(0, "s1", testPath(10, 30, 20), 0),
			models.NewRouteRecord(0, "s2", testPath(40, 50), 0),
		}
		for _, r := range routes {
			if err := repo.Create(r); err != nil {
				t.Fatalf("failed to create route: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list routes: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 routes, got %d", len(all))
		}
		if all[0].Sequence() != 3 {
			t.Errorf("expected newest first, got sequence %d", all[0].Sequence())
		}

		bySession, _ := repo.List(map[string]any{"session_id": "s1"})
		if len(bySession) != 2 {
			t.Errorf("expected 2 routes for s1, got %d", len(bySession))
		}

		byPair, _ := repo.ListByPair(10, 20)
		if len(byPair) != 2 {
			t.Errorf("expected 2 routes for pair, got %d", len(byPair))
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 route with limit, got %d", len(limited))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRouteRepository(db)
		route := models.NewRouteRecord(0, "s1", testPath(1, 2), 0)
		if err := repo.Create(route); err != nil {
			t.Fatalf("failed to create route: %v", err)
		}

		if err := repo.Delete(route.ID()); err != nil {
			t.Fatalf("failed to delete route: %v", err)
		}
		if _, err := repo.Get(route.ID()); !errors.Is(err, shared.ErrRouteNotFound) {
			t.Errorf("expected ErrRouteNotFound after delete, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRouteRepository(db)
		for _, p := range []models.Path{testPath(1, 2), testPath(3, 4)} {
			if err := repo.Create(models.NewRouteRecord(0, "s1", p, 0)); err != nil {
				t.Fatalf("failed to create route: %v", err)
			}
		}

		n, err := repo.Clear()
		if err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 deleted, got %d", n)
		}
	})
}

func TestRouteRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewRouteRepository(setupTestDB(t))

			if err := repo.Create(models.NewRouteRecord(0, "", testPath(1, 2), 0)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for missing session, got %v", err)
			}
			if err := repo.Create(models.NewRouteRecord(0, "s1", nil, 0)); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for empty path, got %v", err)
			}
		})

		t.Run("DuplicateSignature", func(t *testing.T) {
			repo := NewRouteRepository(setupTestDB(t))
			if err := repo.Create(models.NewRouteRecord(0, "s1", testPath(1, 2, 3), 0)); err != nil {
				t.Fatalf("failed to create first route: %v", err)
			}
			if err := repo.Create(models.NewRouteRecord(0, "s2", testPath(1, 2, 3), 0)); err == nil {
				t.Fatal("expected error when creating a duplicate route for the same pair")
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewRouteRepository(db)
			db.Close()
			if err := repo.Create(models.NewRouteRecord(0, "s1", testPath(1, 2), 0)); err == nil {
				t.Fatal("expected error with closed database")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewRouteRepository(setupTestDB(t))
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrRouteNotFound) {
				t.Fatalf("expected ErrRouteNotFound, got %v", err)
			}
		})

		t.Run("CorruptSteps", func(t *testing.T) {
			db := setupTestDB(t)
			_, err := db.Exec(`INSERT INTO routes (id, session_id, source_id, target_id, signature, steps) VALUES ('bad', 's', 1, 2, 'x', 'not json')`)
			if err != nil {
				t.Fatalf("failed to seed: %v", err)
			}
			if _, err := NewRouteRepository(db).Get("bad"); err == nil {
				t.Fatal("expected decode error")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewRouteRepository(setupTestDB(t))
			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrRouteNotFound) {
				t.Fatalf("expected ErrRouteNotFound, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewRouteRepository(db)
			db.Close()
			if _, err := repo.List(nil); err == nil {
				t.Fatal("expected error with closed database")
			}
		})
	})
}

func TestRouteHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Records New Routes Once", func(t *testing.T) {
		repo := NewRouteRepository(setupTestDB(t))
		history := NewRouteHistory(repo)

		if err := history.Record(ctx, "s1", testPath(10, 15, 20), 0.3); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := history.Record(ctx, "s2", testPath(10, 15, 20), 0.3); err != nil {
			t.Fatalf("duplicate should be skipped, got %v", err)
		}
		if err := history.Record(ctx, "s2", testPath(10, 30, 20), 0.3); err != nil {
			t.Fatalf("failed to record: %v", err)
		}

		routes, _ := repo.ListByPair(10, 20)
		if len(routes) != 2 {
			t.Errorf("expected 2 routes, got %d", len(routes))
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		history := NewRouteHistory(NewRouteRepository(setupTestDB(t)))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := history.Record(cctx, "s1", testPath(1, 2), 0); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		history := NewRouteHistory(NewRouteRepository(setupTestDB(t)))
		if err := history.Record(ctx, "s1", nil, 0); err == nil {
			t.Error("expected error for an empty path")
		}
	})
}

func TestArtistLookupRepository(t *testing.T) {
	t.Run("Put And Get", func(t *testing.T) {
		repo := NewArtistLookupRepository(setupTestDB(t))
		artist := models.ArtistMatch{ID: 42, Name: "Nina Simone", GID: "gid-42"}

		if err := repo.Put("  Nina Simone ", artist); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		got, err := repo.Get("nina simone")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.ID != 42 || got.Name != "Nina Simone" || got.GID != "gid-42" {
			t.Errorf("unexpected lookup %+v", got)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		repo := NewArtistLookupRepository(setupTestDB(t))
		repo.Put("prince", models.ArtistMatch{ID: 1, Name: "Prince"})
		repo.Put("Prince", models.ArtistMatch{ID: 2, Name: "Prince"})

		got, _ := repo.Get("prince")
		if got.ID != 2 {
			t.Errorf("expected replaced id 2, got %d", got.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewArtistLookupRepository(setupTestDB(t))
		if _, err := repo.Get("nobody"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		repo := NewArtistLookupRepository(setupTestDB(t))
		if err := repo.Put("  ", models.ArtistMatch{ID: 1}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for blank query, got %v", err)
		}
		if err := repo.Put("x", models.ArtistMatch{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for zero id, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewArtistLookupRepository(setupTestDB(t))
		repo.Put("a", models.ArtistMatch{ID: 1, Name: "A"})
		repo.Put("b", models.ArtistMatch{ID: 2, Name: "B"})
		n, err := repo.Clear()
		if err != nil || n != 2 {
			t.Errorf("expected 2 cleared, got %d (%v)", n, err)
		}
	})
}
