package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/compdb/internal/search"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		msg := "No entries"
		if m.mode == modeSearch && strings.TrimSpace(m.query) == "" {
			msg = "Type to search recorded entries"
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.empty.Render(msg))
	}

	lines := make([]string, 0, height)
	for i := m.offset; i < len(m.results) && len(lines)+linesPerItem <= height; i++ {
		lines = append(lines, entryLines(m.results[i], width, i == m.cursor)...)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// entryLines formats one entry as two lines:
//
//	> #seq  file name
//	    directory, or the matched arguments
func entryLines(r search.Result, width int, selected bool) []string {
	marker := "  "
	if selected {
		marker = styles.cursor.Render("> ")
	}
	seq := fmt.Sprintf("#%-4d ", r.Seq)
	name := runewidth.Truncate(filepath.Base(r.File), max(width-2-len(seq), 0), "…")

	detail := r.Directory
	if strings.Contains(r.Snippet, ">>>") {
		detail = strings.NewReplacer(">>>", "", "<<<", "", "\n", " ", "\t", " ").Replace(r.Snippet)
	}
	// keep the tail of long paths, it names the directory
	if w, limit := runewidth.StringWidth(detail), max(width-4, 0); w > limit {
		detail = runewidth.TruncateLeft(detail, w-limit+1, "…")
	}

	return []string{
		marker + seq + styles.file.Render(name),
		"    " + styles.dir.Render(detail),
	}
}

// scrollToCursor keeps the selected entry inside the visible window.
func (m *model) scrollToCursor() {
	visible := max(m.lay.listH/linesPerItem, 1)
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+visible:
		m.offset = m.cursor - visible + 1
	}
}
