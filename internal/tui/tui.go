// Package tui is an interactive browser over recorded compilation entries:
// a filter line, the matching entries and a preview of the selected one.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/compdb/internal/open"
	"github.com/Zuo-Peng/compdb/internal/search"
	"github.com/Zuo-Peng/compdb/internal/store"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota // full-text search, empty filter shows nothing
	modeList                  // log order, filter narrows by search
)

type action int

const (
	actionNone action = iota
	actionCopy
	actionEdit
)

type searchResultMsg struct {
	query   string
	allRuns bool
	results []search.Result
	err     error
}

type debounceTickMsg struct {
	query string
}

type model struct {
	db      *store.DB
	opts    search.Options
	allRuns bool // ignore opts.RunID
	mode    tuiMode

	query   string
	results []search.Result
	cursor  int
	offset  int // first visible entry

	input   textinput.Model
	preview viewport.Model
	shown   string // key of the entry in the preview
	lay     layout

	ready    bool
	quitting bool
	chosen   *search.Result
	action   action
}

func newModel(db *store.DB, mode tuiMode, query string, opts search.Options) model {
	ti := textinput.New()
	ti.Placeholder = "file name, switch or path"
	if mode == modeList {
		ti.Placeholder = "filter entries"
	}
	ti.Prompt = "› "
	ti.PromptStyle = styles.prompt
	ti.TextStyle = styles.input
	ti.CharLimit = 256
	ti.SetValue(query)
	ti.Focus()

	return model{
		db:      db,
		opts:    opts,
		mode:    mode,
		query:   query,
		input:   ti,
		preview: viewport.New(0, 0),
	}
}

// Run opens the browser in search mode with query prefilled.
func Run(db *store.DB, query string, opts search.Options) error {
	return run(db, newModel(db, modeSearch, query, opts))
}

// RunList opens the browser on the entries of opts.RunID in log order.
func RunList(db *store.DB, opts search.Options) error {
	return run(db, newModel(db, modeList, "", opts))
}

func run(db *store.DB, m model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := final.(model)
	if fm.chosen == nil {
		return nil
	}
	switch fm.action {
	case actionEdit:
		return open.OpenEntry(db, fm.chosen.Key())
	case actionCopy:
		return copyPath(fm.chosen.File)
	}
	return nil
}

// copyPath puts path on the clipboard, or prints it when there is none.
func copyPath(path string) error {
	if err := clipboard.WriteAll(path); err != nil {
		fmt.Println(path)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", path)
	return nil
}

func (m model) Init() tea.Cmd {
	if m.mode == modeList || m.query != "" {
		return tea.Batch(textinput.Blink, m.fetch(m.query))
	}
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.lay = computeLayout(msg.Width, msg.Height)
		m.preview = viewport.New(m.lay.previewW, m.lay.previewH)
		m.shown = ""
		m.ready = true
		m.scrollToCursor()
		return m, m.loadCurrentPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceTickMsg:
		if msg.query != m.query {
			return m, nil
		}
		return m, m.fetch(msg.query)

	case searchResultMsg:
		return m.applyResults(msg)

	case previewRenderedMsg:
		m.applyPreview(msg)
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Copy):
		return m.choose(actionCopy)

	case key.Matches(msg, keys.Edit):
		return m.choose(actionEdit)

	case key.Matches(msg, keys.Up):
		cmd := m.moveCursor(-1)
		return m, cmd

	case key.Matches(msg, keys.Down):
		cmd := m.moveCursor(1)
		return m, cmd

	case key.Matches(msg, keys.Scope):
		if m.opts.RunID == "" {
			return m, nil
		}
		m.allRuns = !m.allRuns
		return m, m.fetch(m.query)

	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(max(m.lay.previewH/2, 1))
		return m, nil

	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(max(m.lay.previewH/2, 1))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, debounce(q))
	}
	return m, cmd
}

// choose ends the program with the selected entry and what to do with it.
func (m model) choose(a action) (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.results) {
		return m, nil
	}
	r := m.results[m.cursor]
	m.chosen = &r
	m.action = a
	m.quitting = true
	return m, tea.Quit
}

// moveCursor moves the selection by delta, clamped to the result list, and
// requests a preview when the selection changed.
func (m *model) moveCursor(delta int) tea.Cmd {
	if len(m.results) == 0 {
		return nil
	}
	next := min(max(m.cursor+delta, 0), len(m.results)-1)
	if next == m.cursor {
		return nil
	}
	m.cursor = next
	m.scrollToCursor()
	return m.loadCurrentPreview()
}

func (m model) applyResults(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query || msg.allRuns != m.allRuns {
		return m, nil // superseded
	}
	m.cursor, m.offset, m.shown = 0, 0, ""
	m.results = msg.results
	switch {
	case msg.err != nil:
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	case len(m.results) == 0:
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.loadCurrentPreview()
}

// scoped returns the search options with the run filter applied or not.
func (m model) scoped() search.Options {
	opts := m.opts
	if m.allRuns {
		opts.RunID = ""
	}
	return opts
}

func (m model) fetch(query string) tea.Cmd {
	db, mode, allRuns := m.db, m.mode, m.allRuns
	opts := m.scoped()
	opts.Query = query
	return func() tea.Msg {
		var results []search.Result
		var err error
		if mode == modeList && strings.TrimSpace(query) == "" {
			results, err = search.ListAll(db, opts)
		} else {
			results, err = search.Search(db, opts)
		}
		return searchResultMsg{query: query, allRuns: allRuns, results: results, err: err}
	}
}

func debounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}
	l := m.lay

	list := styles.list.Width(l.listW).Height(l.listH).Render(m.renderList(l.listW, l.listH))
	m.preview.Width, m.preview.Height = l.previewW, l.previewH
	preview := styles.preview.Width(l.previewW).Height(l.previewH).Render(m.preview.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, preview)
	if l.stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, list, preview)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.input.View(), body, m.statusBar())
}

func (m model) statusBar() string {
	parts := []string{fmt.Sprintf("%d entries", len(m.results))}
	if m.opts.RunID != "" {
		scope := "all runs"
		if !m.allRuns {
			scope = "run " + shortID(m.opts.RunID)
		}
		parts = append(parts, styles.scope.Render(scope))
	}
	parts = append(parts, helpLine(m.opts.RunID != "")...)
	return styles.status.Render(strings.Join(parts, " | "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
