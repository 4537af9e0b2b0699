// Package tasks orchestrates the explorer's user actions with real-time progress reporting.
//
// # Core Operations
//
// [Explorer] exposes three actions:
//
//  1. [Explorer.Submit] : find a route for a new source/target pair
//     - Stops any playing preview
//     - Requests a path and, only when one is found, replaces the session
//     - Returns an animated [ShowPath] instruction for the first route
//
//  2. [Explorer.RequestAlternate] : find a route avoiding every edge seen so far
//     - Endpoints come from the first recorded route
//     - Duplicates and "not found" cycle through known routes instead
//     - Not re-entrant: a second call while one is in flight returns [Busy]
//
//  3. [Explorer.Activate] : play or pause a card's preview
//
// [Explorer.Batch] connects many pairs outside the interactive session and
// writes each route to disk with a manifest.
//
// # Stale Responses
//
// Every request takes a generation from the session. A response that arrives
// after a newer request was issued yields a [Stale] instruction and leaves the
// session untouched.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # Route History
//
// The optional [HistoryRecorder] persists newly discovered routes.
// Recording errors are logged and reported as progress, never surfaced as failures.
package tasks
