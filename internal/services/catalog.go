package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultCatalogURL  = "https://itunes.apple.com"
	DefaultArtworkSize = 600
	thumbnailSize      = "100x100"
)

// CatalogOptions configures a [CatalogService].
type CatalogOptions struct {
	BaseURL     string
	Country     string
	ArtworkSize int
	RateLimit   float64 // requests per second; <= 0 disables pacing
	Burst       int
	Client      *http.Client
}

// CatalogService searches the public iTunes catalog for a single song.
type CatalogService struct {
	api         *APIService
	country     string
	artworkSize int
	limiter     *rate.Limiter
}

// NewCatalogService creates a catalog client from opts, applying defaults.
func NewCatalogService(opts CatalogOptions) *CatalogService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCatalogURL
	}
	if opts.Country == "" {
		opts.Country = "US"
	}
	if opts.ArtworkSize <= 0 {
		opts.ArtworkSize = DefaultArtworkSize
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &CatalogService{
		api:         NewAPIService(opts.BaseURL, opts.Client),
		country:     opts.Country,
		artworkSize: opts.ArtworkSize,
		limiter:     limiter,
	}
}

func (c *CatalogService) Name() string { return "catalog" }

type catalogPayload struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		ArtworkURL100 string `json:"artworkUrl100"`
		PreviewURL    string `json:"previewUrl"`
	} `json:"results"`
}

// Lookup searches for "<track> <artist>" and returns the top result's artwork and preview.
func (c *CatalogService) Lookup(ctx context.Context, track, artist string) (models.MediaInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.MediaInfo{}, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	term := strings.TrimSpace(track + " " + artist)
	resp, err := c.api.GetQuery(ctx, "/search", url.Values{
		"term":    {term},
		"entity":  {"song"},
		"limit":   {"1"},
		"country": {c.country},
	})
	if err != nil {
		return models.MediaInfo{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return models.MediaInfo{}, fmt.Errorf("%w: catalog returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var payload catalogPayload
	if err := resp.Decode(&payload); err != nil {
		return models.MediaInfo{}, fmt.Errorf("%w: %v", shared.ErrUnexpectedResponse, err)
	}
	if len(payload.Results) == 0 {
		return models.MediaInfo{}, shared.ErrNotFound
	}

	top := payload.Results[0]
	info := models.MediaInfo{
		Cover:   UpscaleArtwork(top.ArtworkURL100, c.artworkSize),
		Preview: strings.TrimSpace(top.PreviewURL),
	}
	if info.IsZero() {
		return models.MediaInfo{}, shared.ErrNotFound
	}
	return info, nil
}

// UpscaleArtwork rewrites the 100x100 size segment of a catalog artwork URL to size x size.
func UpscaleArtwork(artwork string, size int) string {
	artwork = strings.TrimSpace(artwork)
	if artwork == "" || size <= 0 {
		return artwork
	}
	dim := strconv.Itoa(size)
	return strings.Replace(artwork, thumbnailSize, dim+"x"+dim, 1)
}
