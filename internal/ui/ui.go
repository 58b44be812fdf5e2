package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/services"
	"github.com/pixelpusher829/jammming/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	DraftView
	SaveView
	ResultView
)

const searchLimit = 20

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	catalog      services.Service
	engine       *tasks.SaveEngine
	drafts       tasks.DraftSource
	draft        *models.Draft
	width        int
	height       int
	searchInput  textinput.Model
	resultsList  list.Model
	results      []models.Track
	draftList    list.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.SaveResult
	err          error
	help         help.Model
	keys         keyMap
}

type searchResultsMsg struct {
	tracks []models.Track
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type saveCompleteMsg struct {
	result *tasks.SaveResult
	err    error
}

// NewModel creates a new TUI model editing the given draft.
func NewModel(ctx context.Context, catalog services.Service, engine *tasks.SaveEngine, drafts tasks.DraftSource, draft *models.Draft) *Model {
	input := textinput.New()
	input.Placeholder = "Search for songs, artists, or albums"
	input.CharLimit = 120
	input.Focus()

	return &Model{
		ctx:         ctx,
		view:        SearchView,
		catalog:     catalog,
		engine:      engine,
		drafts:      drafts,
		draft:       draft,
		searchInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the cursor blink in the search field.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultsList.Width() == 0 {
			m.resultsList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.draftList.Width() == 0 {
			m.draftList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DraftView:
			return m.handleDraftKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case searchResultsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SearchView
			return m, nil
		}
		m.err = nil
		m.results = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = resultItem{track: track, added: m.draft.Contains(track.ID)}
		}
		m.resultsList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultsList.Title = fmt.Sprintf("Results for '%s'", m.searchInput.Value())
		m.resultsList.SetSize(m.width-4, m.height-8)
		m.view = ResultsView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case saveCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderResults()
	case DraftView:
		return m.renderDraft()
	case SaveView:
		return m.renderSave()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		query := m.searchInput.Value()
		if query != "" {
			return m, m.runSearch(query)
		}
		return m, nil
	case "tab":
		m.rebuildDraftList()
		m.view = DraftView
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/", "esc":
		m.view = SearchView
		return m, textinput.Blink
	case "tab":
		m.rebuildDraftList()
		m.view = DraftView
		return m, nil
	case " ", "enter":
		selected := m.resultsList.SelectedItem()
		if item, ok := selected.(resultItem); ok {
			m.toggleTrack(item.track)
			return m, m.resultsList.SetItem(m.resultsList.Index(), resultItem{
				track: item.track,
				added: m.draft.Contains(item.track.ID),
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultsList, cmd = m.resultsList.Update(msg)
	return m, cmd
}

func (m *Model) handleDraftKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "esc":
		if len(m.results) > 0 {
			m.view = ResultsView
		} else {
			m.view = SearchView
		}
		return m, nil
	case " ", "enter":
		selected := m.draftList.SelectedItem()
		if item, ok := selected.(draftItem); ok {
			m.removeTrack(item.track.ID)
			m.rebuildDraftList()
		}
		return m, nil
	case "s":
		if len(m.draft.Tracks) == 0 {
			m.err = fmt.Errorf("draft is empty, add some tracks first")
			return m, nil
		}
		m.view = SaveView
		return m, m.startSave()
	}

	var cmd tea.Cmd
	m.draftList, cmd = m.draftList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = SearchView
		m.searchInput.SetValue("")
		m.results = nil
		m.result = nil
		m.err = nil
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case ResultsView:
		m.resultsList, cmd = m.resultsList.Update(msg)
	case DraftView:
		m.draftList, cmd = m.draftList.Update(msg)
	}
	return m, cmd
}

// toggleTrack adds the track to the draft, or removes it when already present.
func (m *Model) toggleTrack(track models.Track) {
	if m.draft.Contains(track.ID) {
		m.removeTrack(track.ID)
		return
	}
	m.draft.Tracks = append(m.draft.Tracks, track)
}

func (m *Model) removeTrack(trackID string) {
	kept := m.draft.Tracks[:0]
	for _, t := range m.draft.Tracks {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	m.draft.Tracks = kept
}

func (m *Model) rebuildDraftList() {
	items := make([]list.Item, len(m.draft.Tracks))
	for i, track := range m.draft.Tracks {
		items[i] = draftItem{track: track}
	}
	m.draftList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.draftList.Title = fmt.Sprintf("Draft: %s (%d tracks)", m.draft.Name, len(m.draft.Tracks))
	m.draftList.SetSize(m.width-4, m.height-8)
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.catalog.SearchTracks(m.ctx, query, searchLimit)
		return searchResultsMsg{tracks: tracks, err: err}
	}
}

func (m *Model) startSave() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		if err := m.drafts.Update(m.draft); err != nil {
			m.err = err
			close(m.progressChan)
			return
		}
		result, err := m.engine.Save(m.ctx, m.draft.DraftID, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return saveCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return saveCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Jammming")
	var status string
	if m.err != nil {
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else {
		status = styles.help.Render(fmt.Sprintf("%d tracks in draft '%s'", len(m.draft.Tracks), m.draft.Name))
	}

	searchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpView := m.help.ShortHelpView([]key.Binding{searchKey, m.keys.draft, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.searchInput.View(), status, helpView)
}

func (m *Model) renderResults() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.draft, m.keys.search, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.resultsList.View(), helpView)
}

func (m *Model) renderDraft() string {
	removeKey := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "remove"))
	helpView := m.help.ShortHelpView([]key.Binding{removeKey, m.keys.save, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.draftList.View(), helpView)
}

func (m *Model) renderSave() string {
	title := styles.title.Render("Saving to Spotify")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolvePlaylist:
		phase = "Checking for an existing playlist..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.WriteTracks:
		phase = fmt.Sprintf("Writing tracks (%d)", m.progress.Total)
	case tasks.Rename:
		phase = "Renaming playlist..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Save failed: %v\n\nPress r to start over, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to start over, q to quit")
	}

	title := styles.ok.Render("✓ Saved to Spotify!")
	verb := "Updated"
	if m.result.Created {
		verb = "Created"
	}
	info := fmt.Sprintf("\n%s playlist '%s' with %d tracks", verb, m.result.Playlist.Name, m.result.TrackCount)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
