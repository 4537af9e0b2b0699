package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

var _ models.Repository[*models.RouteRecord] = (*RouteRepository)(nil)

// RouteRepository implements models.Repository[*models.RouteRecord] for route history.
//
// A route is stored at most once per (source, target, signature); rediscovering
// the same path in a later session keeps the original record.
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new RouteRepository with the given database connection
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, sequence, session_id, source_id, source_name, target_id, target_name, steps, seconds, created_at`

// Create inserts a new [models.RouteRecord] into the database with generated ID and sequence
func (r *RouteRepository) Create(route *models.RouteRecord) error {
	if err := route.Validate(); err != nil {
		return fmt.Errorf("%w: validation failed: %v", shared.ErrInvalidInput, err)
	}

	steps, err := route.StepsJSON()
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "routes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	route.SetID(id)
	route.SetSequence(sequence)

	query := `
		INSERT INTO routes (id, sequence, session_id, source_id, source_name, target_id, target_name, signature, degrees, seconds, steps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	src, dst := route.Source(), route.Target()
	_, err = r.db.Exec(query,
		id,
		sequence,
		route.SessionID(),
		src.ID,
		src.Name,
		dst.ID,
		dst.Name,
		route.Signature(),
		route.Degrees(),
		route.Seconds(),
		steps,
		route.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert route: %w", err)
	}

	return nil
}

// Get retrieves a route by ID
func (r *RouteRepository) Get(id string) (*models.RouteRecord, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = ?`
	return scanRoute(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a route by its history number.
func (r *RouteRepository) GetBySequence(sequence int) (*models.RouteRecord, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE sequence = ?`
	return scanRoute(r.db.QueryRow(query, sequence))
}

// Exists reports whether the pair already has a route with this signature.
func (r *RouteRepository) Exists(sourceID, targetID int64, signature string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM routes WHERE source_id = ? AND target_id = ? AND signature = ?`,
		sourceID, targetID, signature,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query route: %w", err)
	}
	return n > 0, nil
}

// Delete removes a route by ID
func (r *RouteRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRouteNotFound, id)
	}

	return nil
}

// Clear removes every route and returns how many were deleted.
func (r *RouteRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM routes`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear routes: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves routes matching the given criteria, newest first.
//
// Supported criteria: "session_id" (string), "source_id" and "target_id" (int64),
// and "limit" (int).
func (r *RouteRepository) List(criteria map[string]any) ([]*models.RouteRecord, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE 1 = 1`
	args := []any{}

	if sessionID, ok := criteria["session_id"].(string); ok && sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	if sourceID, ok := criteria["source_id"].(int64); ok && sourceID > 0 {
		query += " AND source_id = ?"
		args = append(args, sourceID)
	}

	if targetID, ok := criteria["target_id"].(int64); ok && targetID > 0 {
		query += " AND target_id = ?"
		args = append(args, targetID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []*models.RouteRecord
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return routes, nil
}

// ListByPair retrieves every route recorded between source and target, newest first.
func (r *RouteRepository) ListByPair(sourceID, targetID int64) ([]*models.RouteRecord, error) {
	return r.List(map[string]any{"source_id": sourceID, "target_id": targetID})
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*models.RouteRecord, error) {
	var (
		id         string
		sequence   int
		sessionID  string
		sourceID   int64
		sourceName string
		targetID   int64
		targetName string
		steps      string
		seconds    float64
		createdAt  time.Time
	)

	err := row.Scan(&id, &sequence, &sessionID, &sourceID, &sourceName, &targetID, &targetName, &steps, &seconds, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan route: %w", err)
	}

	path, err := models.DecodeSteps(steps)
	if err != nil {
		return nil, err
	}

	route := models.NewRouteRecord(sequence, sessionID, path, seconds)
	route.SetID(id)
	route.SetCreatedAt(createdAt)
	route.SetSource(models.Artist{ID: sourceID, Name: sourceName})
	route.SetTarget(models.Artist{ID: targetID, Name: targetName})

	return route, nil
}
