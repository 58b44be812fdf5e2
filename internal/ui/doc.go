// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building and publishing playlists:
//  1. [SearchView] : Enter a free-text catalog search
//  2. [ResultsView] : Browse results and toggle tracks into the draft
//  3. [DraftView] : Review and prune the draft tracklist
//  4. [SaveView] : Monitor real-time progress while publishing
//  5. [ResultView] : Display the published playlist or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the SaveEngine, providing non-blocking status reporting during publishing.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
