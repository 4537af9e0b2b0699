// Package repositories implements SQLite persistence for route history.
//
// Key Implementations:
//   - [RouteRepository] : Distinct routes per source/target pair, listed newest first
//   - [RouteHistory] : Adapter recording routes found by the explorer, skipping duplicates
//   - [ArtistLookupRepository] : Free-text artist names mapped to resolved ids
//
// Sequence numbers provide stable, human-readable ordering (e.g., route #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
