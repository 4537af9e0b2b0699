// Package models defines the domain entities shared by the connection explorer.
//
// The package contains two categories of types:
//
// 1. Wire values: Immutable structs normalized from backend and catalog responses
//   - [ConnectionStep] : One hop between two artists, optionally via a track
//   - [Path] : Ordered hops from source to target; empty means "no connection"
//   - [Edge] : Undirected artist pair used for exclusion and dedup
//   - [MediaInfo] : Cover art and preview clip for a (track, artist) pair
//   - [ArtistMatch] : Autocomplete/search result
//   - [PathRequest] / [PathResult] : Typed request and outcome of a path lookup
//
// 2. Persistent Entities: Database-backed route history
//   - [RouteRecord] : A distinct path discovered for a source/target pair
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
