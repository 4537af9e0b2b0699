package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/render"
	"github.com/desertthunder/sdos/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchDue MsgKind = iota
	MsgSuggestions
	MsgInstruction
	MsgProgressUpdate
	MsgPlayback
	MsgActivated
	MsgFrame
	MsgCoverChecked
	MsgShared
	MsgOpened
)

type searchDue struct {
	field int
	seq   int
	query string
}

type suggestions struct {
	field   int
	seq     int
	matches []models.ArtistMatch
	err     error
}

type instruction struct {
	ins       tasks.Instruction
	alternate bool
}

type coverChecked struct {
	model *render.Model
	card  int
	ok    bool
}

// searchDueMsg is the constructor for [MsgSearchDue]
func searchDueMsg(field, seq int, query string) Msg {
	return Msg{kind: MsgSearchDue, data: searchDue{field, seq, query}}
}

// suggestionsMsg is the constructor for [MsgSuggestions]
func suggestionsMsg(field, seq int, matches []models.ArtistMatch, err error) Msg {
	return Msg{kind: MsgSuggestions, data: suggestions{field, seq, matches, err}}
}

// instructionMsg is the constructor for [MsgInstruction]
func instructionMsg(ins tasks.Instruction, alternate bool) Msg {
	return Msg{kind: MsgInstruction, data: instruction{ins, alternate}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// playbackMsg is the constructor for [MsgPlayback]
func playbackMsg(e playback.Event) Msg {
	return Msg{kind: MsgPlayback, data: e}
}

// activatedMsg is the constructor for [MsgActivated]
func activatedMsg(err error) Msg {
	return Msg{kind: MsgActivated, data: err}
}

// frameMsg is the constructor for [MsgFrame]
func frameMsg() Msg {
	return Msg{kind: MsgFrame}
}

// coverCheckedMsg is the constructor for [MsgCoverChecked]
func coverCheckedMsg(m *render.Model, card int, ok bool) Msg {
	return Msg{kind: MsgCoverChecked, data: coverChecked{m, card, ok}}
}

// sharedMsg is the constructor for [MsgShared]
func sharedMsg(err error) Msg {
	return Msg{kind: MsgShared, data: err}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{
		kind: MsgOpened,
		data: struct {
			url string
			err error
		}{url, err},
	}
}

// errOf extracts an error payload; nil data means success.
func errOf(msg Msg) error {
	err, _ := msg.data.(error)
	return err
}
