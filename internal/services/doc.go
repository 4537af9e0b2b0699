// Package services implements the network collaborators of the explorer.
//
// # Backend
//
// [APIService] is a thin JSON client over [http.Client]. When a token is configured
// the client is wrapped by [NewBearerClient] (an [oauth2.StaticTokenSource]) so
// every request carries a bearer header.
//
// The backend exposes:
//   - POST /api/path   : [PathService.FindPath]
//   - GET  /api/search : [SearchService.SearchArtists]
//   - GET  /api/cover  : [CoverService.Lookup], the second media tier
//   - GET  /health     : [HealthService.Check]
//
// # Catalog
//
// [CatalogService] queries the public iTunes Search API for one song and returns
// its artwork (upscaled by rewriting the size segment of the URL) and preview clip.
// Calls are paced with a [rate.Limiter]. It is the first media tier.
//
// # Error Handling
//
// Network boundaries convert failures into typed outcomes:
//   - [PathService] returns [models.PathResult]; it never returns an error
//   - media lookups return [shared.ErrNotFound] for empty results and wrap
//     [shared.ErrAPIRequest] for transport or status failures
//   - search wraps [shared.ErrAPIRequest]; [BestMatch] returns [shared.ErrNoMatch]
package services
