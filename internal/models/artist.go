package models

// ArtistMatch is a single autocomplete/search result.
type ArtistMatch struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	GID          string `json:"gid,omitempty"`
	ReleaseCount int    `json:"release_count"`
	Image        string `json:"image,omitempty"`
}

// Artist is a resolved endpoint of a request: an ID plus a display name.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
