package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// ArtistLookupRepository remembers which artist a free-text name resolved to,
// so repeated CLI invocations skip the search round trip.
type ArtistLookupRepository struct {
	db *sql.DB
}

func NewArtistLookupRepository(db *sql.DB) *ArtistLookupRepository {
	return &ArtistLookupRepository{db: db}
}

// lookupKey folds case so "nina simone" and "Nina Simone" share an entry.
func lookupKey(query string) string {
	return strings.ToLower(shared.NormalizeKey(query))
}

// Put stores or replaces the artist resolved for query.
func (r *ArtistLookupRepository) Put(query string, artist models.ArtistMatch) error {
	key := lookupKey(query)
	if key == "" {
		return fmt.Errorf("%w: empty artist query", shared.ErrInvalidInput)
	}
	if artist.ID <= 0 {
		return fmt.Errorf("%w: artist id must be positive", shared.ErrInvalidInput)
	}

	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO artist_lookups (query, artist_id, artist_name, gid, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, key, artist.ID, artist.Name, artist.GID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store artist lookup: %w", err)
	}
	return nil
}

// Get returns the artist previously resolved for query, or [shared.ErrNotFound].
func (r *ArtistLookupRepository) Get(query string) (models.ArtistMatch, error) {
	var m models.ArtistMatch
	err := r.db.QueryRow(
		`SELECT artist_id, artist_name, gid FROM artist_lookups WHERE query = ?`,
		lookupKey(query),
	).Scan(&m.ID, &m.Name, &m.GID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ArtistMatch{}, shared.ErrNotFound
	}
	if err != nil {
		return models.ArtistMatch{}, fmt.Errorf("failed to query artist lookup: %w", err)
	}
	return m, nil
}

// Clear removes every remembered lookup.
func (r *ArtistLookupRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM artist_lookups`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear artist lookups: %w", err)
	}
	return result.RowsAffected()
}
