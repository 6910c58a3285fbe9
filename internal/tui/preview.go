package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/compdb/internal/render"
	"github.com/Zuo-Peng/compdb/internal/search"
	"github.com/Zuo-Peng/compdb/internal/store"
)

// previewRenderedMsg carries a rendered entry back to the model.
type previewRenderedMsg struct {
	key     string
	content string
	err     error
}

func loadPreviewCmd(db *store.DB, r search.Result, query string, width int) tea.Cmd {
	key := r.Key()
	return func() tea.Msg {
		content, err := render.RenderEntry(db, key, render.Options{
			Width: width,
			Query: query,
		})
		return previewRenderedMsg{key: key, content: content, err: err}
	}
}

// applyPreview shows msg unless the cursor has moved on since it was
// requested.
func (m *model) applyPreview(msg previewRenderedMsg) {
	if msg.key == m.shown {
		return
	}
	if m.cursor >= len(m.results) || m.results[m.cursor].Key() != msg.key {
		return
	}
	if msg.err != nil {
		m.preview.SetContent("Preview error: " + msg.err.Error())
	} else {
		m.preview.SetContent(msg.content)
		m.preview.GotoTop()
	}
	m.shown = msg.key
}

func (m model) loadCurrentPreview() tea.Cmd {
	if m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	if r.Key() == m.shown {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.query, m.lay.previewW)
}
