package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	Edit      key.Binding
	Scope     key.Binding
	Quit      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "down"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy file path"),
	),
	Edit: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "open in $EDITOR"),
	),
	Scope: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "this run / all runs"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	PreviewUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "preview up"),
	),
	PreviewDn: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "preview down"),
	),
}

// helpLine renders the bindings for the status bar. The scope toggle is
// only listed when there is a run to scope to.
func helpLine(scoped bool) []string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Copy, keys.Edit}
	if scoped {
		bindings = append(bindings, keys.Scope)
	}
	bindings = append(bindings, keys.PreviewUp, keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return parts
}
