package render

import (
	"net/url"
	"strings"

	"github.com/desertthunder/sdos/internal/models"
)

// Link is an outbound search link for a card.
type Link struct {
	Service string
	URL     string
}

// Service names, in display order.
const (
	ServiceMusicBrainz = "MusicBrainz"
	ServiceAppleMusic  = "Apple Music"
	ServiceSpotify     = "Spotify"
	ServiceYouTube     = "YouTube"
)

// encodeComponent percent-encodes s for use anywhere in a URL, with %20 for spaces.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// StepLinks builds the metadata and streaming search links for step.
// Steps without a track get none.
func StepLinks(step models.ConnectionStep) []Link {
	if !step.HasTrack() {
		return nil
	}

	mb := encodeComponent("recording:" + step.Track + " AND artist:" + step.FromName)
	q := encodeComponent(step.Track + " " + step.FromName + " " + step.ToName)

	return []Link{
		{Service: ServiceMusicBrainz, URL: "https://musicbrainz.org/search?query=" + mb + "&type=recording"},
		{Service: ServiceAppleMusic, URL: "https://music.apple.com/us/search?term=" + q},
		{Service: ServiceSpotify, URL: "https://open.spotify.com/search/" + q},
		{Service: ServiceYouTube, URL: "https://www.youtube.com/results?search_query=" + q},
	}
}
