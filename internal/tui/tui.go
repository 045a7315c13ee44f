// Package tui provides a Bubble Tea terminal user interface for yamusic-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/yamusic-downloader/internal/download"
	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/progress"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFCC00")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)
)

// State represents the current UI state.
type State int

const (
	StateEdit State = iota
	StateBusy
	StateDone
	StateError
)

// field identifies a focusable part of the form.
type field int

const (
	fieldToken field = iota
	fieldOutput
	fieldPattern
	fieldURL
	fieldSearch
	fieldResults
)

var fieldLabels = [fieldResults]string{
	fieldToken:   "Token",
	fieldOutput:  "Output",
	fieldPattern: "Pattern",
	fieldURL:     "URL",
	fieldSearch:  "Search",
}

const (
	maxLogs        = 8
	visibleResults = 10
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   progress.Level
}

// Model is the Bubble Tea model for the TUI.
//
// All state lives here and is only changed in Update. Work started by the
// model runs in tea.Cmd goroutines and reports back through a progress.Queue
// whose events arrive as messages.
type Model struct {
	state   State
	manager *download.Manager

	inputs []textinput.Model
	focus  field

	spinner spinner.Model
	bar     pbar.Model

	options model.DownloadOptions
	verbose bool

	results  []*model.Track
	selected map[int]bool
	cursor   int

	// Current action
	gen     int
	action  string
	queue   *progress.Queue
	events  <-chan progress.Event
	cancel  context.CancelFunc
	tracker *progress.Tracker

	status   string
	logs     []LogEntry
	summary  string
	failures []download.Failure
	err      error

	width int
}

// NewModel creates a TUI model driving manager. The form starts with the
// manager's current settings.
func NewModel(manager *download.Manager, verbose bool) Model {
	settings := manager.Settings()

	values := [fieldResults]string{
		fieldToken:   settings.Token,
		fieldOutput:  settings.Output,
		fieldPattern: settings.PathPattern,
	}
	placeholders := [fieldResults]string{
		fieldToken:   "OAuth token",
		fieldOutput:  "~/Music/Yandex Music",
		fieldPattern: model.DefaultPathPattern,
		fieldURL:     "https://music.yandex.ru/album/123",
		fieldSearch:  "artist or title",
	}

	inputs := make([]textinput.Model, fieldResults)
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 500
		ti.Width = 60
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[fieldToken].EchoMode = textinput.EchoPassword
	inputs[fieldToken].EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFCC00"))

	bar := pbar.New(pbar.WithDefaultGradient())
	bar.Width = 50

	m := Model{
		state:    StateEdit,
		manager:  manager,
		inputs:   inputs,
		spinner:  sp,
		bar:      bar,
		options:  manager.Runtime().Options,
		verbose:  verbose,
		selected: make(map[int]bool),
	}
	m.setFocus(fieldURL)
	if settings.Token == "" {
		m.setFocus(fieldToken)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Message types
type (
	// eventMsg carries one progress event of action gen.
	eventMsg struct {
		gen   int
		event progress.Event
	}

	// eventsClosedMsg is sent when the queue of action gen is drained.
	eventsClosedMsg struct {
		gen int
	}

	// searchDoneMsg is sent when a search completes.
	searchDoneMsg struct {
		tracks []*model.Track
		err    error
	}

	// downloadDoneMsg is sent when a batch completes.
	downloadDoneMsg struct {
		result download.BatchResult
		err    error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.handleEvent(msg.event)
		return m, waitForEvent(m.gen, m.events)

	case eventsClosedMsg:
		return m, nil

	case searchDoneMsg:
		m.finish()
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.results = msg.tracks
		m.selected = make(map[int]bool)
		m.cursor = 0
		m.state = StateEdit
		if len(m.results) > 0 {
			m.setFocus(fieldResults)
		}
		return m, nil

	case downloadDoneMsg:
		m.finish()
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.state = StateDone
		m.summary = msg.result.Summary()
		m.failures = msg.result.Failed
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		if m.queue != nil {
			m.queue.Stop()
		}
		return m, tea.Quit
	}

	switch m.state {
	case StateBusy:
		if key == "esc" && m.cancel != nil {
			m.cancel()
			m.status = "Cancelling..."
		}
		return m, nil

	case StateDone, StateError:
		switch key {
		case "q":
			return m, tea.Quit
		case "enter", "esc":
			m.state = StateEdit
			m.err = nil
			return m, nil
		}
		return m, nil
	}

	switch key {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.setFocus(m.nextField(1))
		return m, nil
	case "shift+tab":
		m.setFocus(m.nextField(-1))
		return m, nil
	case "f2":
		m.options.Quality = model.Qualities[(int(m.options.Quality)+1)%len(model.Qualities)]
		return m, nil
	case "f3":
		m.options.Lyrics = model.LyricsFormats[(int(m.options.Lyrics)+1)%len(model.LyricsFormats)]
		return m, nil
	case "f4":
		m.options.EmbedCover = !m.options.EmbedCover
		return m, nil
	case "f5":
		m.options.SkipExisting = !m.options.SkipExisting
		return m, nil
	case "f6":
		m.verbose = !m.verbose
		return m, nil
	case "enter":
		switch m.focus {
		case fieldURL:
			return m, m.startDownloadURL()
		case fieldSearch:
			return m, m.startSearch()
		case fieldResults:
			return m, m.startDownloadSelected()
		default:
			m.setFocus(m.nextField(1))
			return m, nil
		}
	}

	if m.focus == fieldResults {
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case " ", "x":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			all := len(m.selectedIndexes()) < len(m.results)
			for i := range m.results {
				m.selected[i] = all
			}
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state != StateEdit || m.focus >= fieldResults {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleEvent(e progress.Event) {
	switch e.Kind {
	case progress.KindProgress:
		m.tracker.Progress(e.Completed, e.Total, e.Label)
	case progress.KindStatus:
		if e.Level == progress.LevelVerbose && !m.verbose {
			return
		}
		m.status = e.Message
		m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}
	}
}

// nextField returns the field dir steps away from the focused one, skipping
// the results list when it is empty.
func (m Model) nextField(dir int) field {
	n := int(fieldResults)
	if len(m.results) > 0 {
		n++
	}
	return field(((int(m.focus)+dir)%n + n) % n)
}

func (m *Model) setFocus(f field) {
	m.focus = f
	for i := range m.inputs {
		if field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m Model) selectedIndexes() []int {
	var idx []int
	for i := range m.results {
		if m.selected[i] {
			idx = append(idx, i)
		}
	}
	return idx
}

// applySettings pushes the form values to the manager before an action.
func (m *Model) applySettings() {
	s := m.manager.Settings()
	s.Token = strings.TrimSpace(m.inputs[fieldToken].Value())
	s.Output = strings.TrimSpace(m.inputs[fieldOutput].Value())
	s.PathPattern = strings.TrimSpace(m.inputs[fieldPattern].Value())
	m.manager.SetSettings(s)

	rt := m.manager.Runtime()
	rt.Options = m.options
	m.manager.SetRuntime(rt)
}

// begin switches to the busy state and returns the context and queue of a
// new action.
func (m *Model) begin(action string) (context.Context, *progress.Queue) {
	m.applySettings()

	ctx, cancel := context.WithCancel(context.Background())
	q := progress.NewQueue()

	// Nobody reads the previous queue once gen moves on.
	if m.queue != nil {
		m.queue.Stop()
	}

	m.gen++
	m.state = StateBusy
	m.action = action
	m.cancel = cancel
	m.queue = q
	m.events = q.Events()
	m.tracker = progress.NewTracker(nil)
	m.status = ""
	m.logs = nil
	m.summary = ""
	m.failures = nil
	m.err = nil
	return ctx, q
}

func (m *Model) finish() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) fail(err error) {
	m.state = StateError
	m.err = err
}

func (m *Model) startSearch() tea.Cmd {
	query := strings.TrimSpace(m.inputs[fieldSearch].Value())
	if query == "" {
		m.status = "Enter a search query."
		return nil
	}

	ctx, q := m.begin("Searching")
	manager := m.manager
	run := func() tea.Msg {
		defer q.Close()
		tracks, err := manager.Search(ctx, query, q)
		return searchDoneMsg{tracks: tracks, err: err}
	}
	return tea.Batch(run, waitForEvent(m.gen, m.events), m.spinner.Tick)
}

func (m *Model) startDownloadURL() tea.Cmd {
	url := strings.TrimSpace(m.inputs[fieldURL].Value())
	if url == "" {
		m.status = "Enter a track, album or playlist URL."
		return nil
	}

	ctx, q := m.begin("Downloading")
	manager := m.manager
	run := func() tea.Msg {
		defer q.Close()
		res, err := manager.DownloadURL(ctx, url, q)
		return downloadDoneMsg{result: res, err: err}
	}
	return tea.Batch(run, waitForEvent(m.gen, m.events), m.spinner.Tick)
}

func (m *Model) startDownloadSelected() tea.Cmd {
	indexes := m.selectedIndexes()
	if len(indexes) == 0 {
		m.status = "Select at least one track (space)."
		return nil
	}

	ctx, q := m.begin("Downloading")
	manager := m.manager
	run := func() tea.Msg {
		defer q.Close()
		res, err := manager.DownloadSelected(ctx, indexes, q)
		return downloadDoneMsg{result: res, err: err}
	}
	return tea.Batch(run, waitForEvent(m.gen, m.events), m.spinner.Tick)
}

// waitForEvent delivers the next event of events as a message.
func waitForEvent(gen int, events <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{gen: gen}
		}
		return eventMsg{gen: gen, event: e}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ Yandex Music Downloader"))
	b.WriteString("\n")

	b.WriteString(m.viewForm())
	b.WriteString("\n")
	b.WriteString(m.viewResults())

	switch m.state {
	case StateBusy:
		b.WriteString(m.viewBusy())
	case StateDone:
		b.WriteString(m.viewDone())
	case StateError:
		b.WriteString(m.viewError())
	default:
		if m.status != "" {
			b.WriteString(infoStyle.Render(m.status))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	for i, in := range m.inputs {
		label := fmt.Sprintf("%-8s", fieldLabels[i])
		if field(i) == m.focus {
			label = cursorStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label + " " + in.View() + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"Quality: %s (f2) • Lyrics: %s (f3) • %s Cover (f4) • %s Skip existing (f5) • %s Verbose (f6)",
		m.options.Quality, m.options.Lyrics,
		check(m.options.EmbedCover), check(m.options.SkipExisting), check(m.verbose),
	)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewResults() string {
	if len(m.results) == 0 {
		return ""
	}

	var b strings.Builder
	header := fmt.Sprintf("Results (%d, %d selected)", len(m.results), len(m.selectedIndexes()))
	if m.focus == fieldResults {
		b.WriteString(cursorStyle.Render(header))
	} else {
		b.WriteString(labelStyle.Render(header))
	}
	b.WriteString("\n")

	start := 0
	if m.cursor >= visibleResults {
		start = m.cursor - visibleResults + 1
	}
	end := min(start+visibleResults, len(m.results))
	for i := start; i < end; i++ {
		t := m.results[i]
		line := fmt.Sprintf("%s %s - %s", check(m.selected[i]), t.ArtistLine(), t.FullTitle())
		if t.Album != nil && t.Album.Title != "" {
			line += dimStyle.Render(" [" + t.Album.Title + "]")
		}
		if i == m.cursor && m.focus == fieldResults {
			b.WriteString(cursorStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewBusy() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(labelStyle.Render(m.action + "..."))
	b.WriteString("\n\n")

	if m.tracker != nil {
		snap := m.tracker.Snapshot()
		if snap.Total > 0 {
			b.WriteString(m.bar.ViewAs(snap.Fraction()))
			b.WriteString("\n")
			b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d | Remaining: %d", snap.Completed, snap.Total, snap.Remaining)))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewDone() string {
	var b strings.Builder

	body := "✨ Download Complete!\n\n" + m.summary
	for _, f := range m.failures {
		body += "\n" + errorStyle.Render(fmt.Sprintf("✗ %s: %s", f.Track.FullTitle(), f.Reason))
	}
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + describeError(m.err))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case progress.LevelError:
			style = errorStyle
			prefix = "✗"
		case progress.LevelWarning:
			style = warningStyle
			prefix = "!"
		case progress.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case progress.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateBusy:
		return "esc: cancel"
	case StateDone, StateError:
		return "enter: back • q: quit"
	}
	if m.focus == fieldResults {
		return "space: toggle • a: all • enter: download selected • tab: next field • esc: quit"
	}
	return "enter: run/next • tab: next field • esc: quit"
}

// describeError turns the errors a front end can show into short messages.
func describeError(err error) string {
	switch {
	case yandex.IsAuth(err):
		return "Authorization failed: check the OAuth token."
	case errors.Is(err, context.Canceled):
		return "Cancelled by user."
	default:
		return err.Error()
	}
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(manager *download.Manager, verbose bool) error {
	p := tea.NewProgram(NewModel(manager, verbose), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
