// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is the presentation layer of the explorer and has four views:
//  1. [FormView] : Pick the two artists, with debounced autocomplete suggestions
//  2. [LoadingView] : Spinner and the explorer's progress messages while a path is requested
//  3. [ResultsView] : Path cards revealed one at a time, each with a preview control and service links
//  4. [MessageView] : "No connection found!" and the other outcomes that replace the results
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every user action is delegated to a [tasks.Explorer] in a command; the returned instruction decides what is painted.
// Instructions marked stale are dropped, so a slow response never overwrites a newer one.
//
// Each card with a preview gets a control that the playback controller drives from its own goroutines.
// A frame tick re-renders the reveal and the progress bar of the playing card while results are shown.
//
// Keyboard navigation uses vim-style bindings (j/k, space, a, r, s, o, 1-4, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
