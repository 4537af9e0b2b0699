package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/sdos/internal/models"
)

var _ list.Item = suggestionItem{}

// suggestionItem wraps [models.ArtistMatch] to implement [list.Item].
type suggestionItem struct {
	match models.ArtistMatch
}

func (i suggestionItem) FilterValue() string { return i.match.Name }
func (i suggestionItem) Title() string       { return i.match.Name }
func (i suggestionItem) Description() string {
	desc := fmt.Sprintf("#%d", i.match.ID)
	if i.match.ReleaseCount > 0 {
		desc = fmt.Sprintf("%s • %d releases", desc, i.match.ReleaseCount)
	}
	return desc
}

func suggestionItems(matches []models.ArtistMatch) []list.Item {
	items := make([]list.Item, len(matches))
	for i, m := range matches {
		items[i] = suggestionItem{match: m}
	}
	return items
}

func newSuggestionList() list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
