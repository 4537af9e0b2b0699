package models

// MediaInfo carries the cover art and preview clip URLs for a step.
//
// Empty strings mean "not available".
type MediaInfo struct {
	Cover   string `json:"cover,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// IsZero reports whether neither URL was found.
func (m MediaInfo) IsZero() bool {
	return m.Cover == "" && m.Preview == ""
}
