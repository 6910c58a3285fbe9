package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/compdb/internal/search"
)

func sampleResults(n int) []search.Result {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			RunID:     "run-1",
			Seq:       i,
			File:      "/work/src/file.cpp",
			Directory: "/work/src",
		}
	}
	return results
}

func sized(m model, width, height int) model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return next.(model)
}

func press(m model, k tea.KeyType) (model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(model), cmd
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		width, height int
		stacked       bool
	}{
		{160, 50, false},
		{100, 30, false},
		{99, 30, true},
		{60, 20, true},
	}

	for _, tt := range tests {
		l := computeLayout(tt.width, tt.height)
		if l.stacked != tt.stacked {
			t.Errorf("computeLayout(%d, %d).stacked = %v, want %v", tt.width, tt.height, l.stacked, tt.stacked)
			continue
		}
		body := tt.height - 2
		if l.stacked {
			if got := l.listH + l.previewH + 4; got != body {
				t.Errorf("computeLayout(%d, %d): stacked panels use %d rows, want %d", tt.width, tt.height, got, body)
			}
		} else {
			if got := l.listW + l.previewW + 4; got != tt.width {
				t.Errorf("computeLayout(%d, %d): panels use %d columns, want %d", tt.width, tt.height, got, tt.width)
			}
		}
		if l.listH < linesPerItem {
			t.Errorf("computeLayout(%d, %d).listH = %d", tt.width, tt.height, l.listH)
		}
	}
}

func TestCursorMovement(t *testing.T) {
	m := sized(newModel(nil, modeList, "", search.Options{RunID: "run-1"}), 120, 12)
	m.results = sampleResults(10)

	m, cmd := press(m, tea.KeyDown)
	if m.cursor != 1 || cmd == nil {
		t.Fatalf("after down: cursor = %d, cmd = %v", m.cursor, cmd)
	}

	for i := 0; i < 20; i++ {
		m, _ = press(m, tea.KeyDown)
	}
	if m.cursor != 9 {
		t.Errorf("cursor = %d, want clamped to 9", m.cursor)
	}
	visible := m.lay.listH / linesPerItem
	if m.offset != 9-visible+1 {
		t.Errorf("offset = %d, want %d", m.offset, 9-visible+1)
	}
	if _, cmd := press(m, tea.KeyDown); cmd != nil {
		t.Error("moving past the end requested a preview")
	}

	for i := 0; i < 20; i++ {
		m, _ = press(m, tea.KeyUp)
	}
	if m.cursor != 0 || m.offset != 0 {
		t.Errorf("cursor = %d, offset = %d after moving to the top", m.cursor, m.offset)
	}
}

func TestChooseEntry(t *testing.T) {
	tests := []struct {
		key  tea.KeyType
		want action
	}{
		{tea.KeyEnter, actionCopy},
		{tea.KeyCtrlO, actionEdit},
	}

	for _, tt := range tests {
		m := newModel(nil, modeSearch, "file", search.Options{})
		m.results = sampleResults(3)
		m.cursor = 2

		m, cmd := press(m, tt.key)
		if cmd == nil || !m.quitting {
			t.Fatalf("%v did not quit", tt.key)
		}
		if m.chosen == nil || m.chosen.Seq != 2 || m.action != tt.want {
			t.Errorf("%v: chosen = %+v, action = %v", tt.key, m.chosen, m.action)
		}
	}

	m := newModel(nil, modeSearch, "", search.Options{})
	if m, _ := press(m, tea.KeyEnter); m.quitting {
		t.Error("enter with no results quit the browser")
	}
}

func TestScopeToggle(t *testing.T) {
	m := newModel(nil, modeList, "", search.Options{RunID: "run-1"})
	m, cmd := press(m, tea.KeyCtrlR)
	if !m.allRuns || cmd == nil {
		t.Fatalf("allRuns = %v, cmd = %v", m.allRuns, cmd)
	}
	if got := m.scoped().RunID; got != "" {
		t.Errorf("scoped().RunID = %q with all runs selected", got)
	}

	m, _ = press(m, tea.KeyCtrlR)
	if m.allRuns || m.scoped().RunID != "run-1" {
		t.Errorf("toggle back: allRuns = %v, RunID = %q", m.allRuns, m.scoped().RunID)
	}

	unscoped := newModel(nil, modeSearch, "", search.Options{})
	if m, cmd := press(unscoped, tea.KeyCtrlR); m.allRuns || cmd != nil {
		t.Error("scope toggled without a run")
	}
}

func TestStaleResultsIgnored(t *testing.T) {
	m := newModel(nil, modeSearch, "widget", search.Options{RunID: "run-1"})

	next, _ := m.Update(searchResultMsg{query: "wid", results: sampleResults(2)})
	if got := next.(model).results; got != nil {
		t.Errorf("results for an old query applied: %v", got)
	}

	next, _ = m.Update(searchResultMsg{query: "widget", allRuns: true, results: sampleResults(2)})
	if got := next.(model).results; got != nil {
		t.Errorf("results for the other scope applied: %v", got)
	}

	next, cmd := m.Update(searchResultMsg{query: "widget", results: sampleResults(2)})
	if got := next.(model).results; len(got) != 2 || cmd == nil {
		t.Errorf("current results: %d applied, cmd = %v", len(got), cmd)
	}
}

func TestStalePreviewIgnored(t *testing.T) {
	m := newModel(nil, modeList, "", search.Options{})
	m.results = sampleResults(2)
	m.cursor = 1

	m.applyPreview(previewRenderedMsg{key: m.results[0].Key(), content: "old"})
	if m.shown != "" {
		t.Errorf("preview of a deselected entry shown: %q", m.shown)
	}
	m.applyPreview(previewRenderedMsg{key: m.results[1].Key(), content: "current"})
	if m.shown != m.results[1].Key() {
		t.Errorf("shown = %q, want %q", m.shown, m.results[1].Key())
	}
}

func TestViewLayouts(t *testing.T) {
	for _, width := range []int{140, 70} {
		m := sized(newModel(nil, modeList, "", search.Options{RunID: "0123456789ab"}), width, 24)
		m.results = sampleResults(3)

		view := m.View()
		if !strings.Contains(view, "file.cpp") {
			t.Errorf("width %d: view has no entries:\n%s", width, view)
		}
		if !strings.Contains(view, "run 01234567") {
			t.Errorf("width %d: status bar lacks the run scope", width)
		}
	}
}
