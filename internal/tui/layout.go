package tui

// Terminals narrower than this get the preview below the list.
const sideBySideMinWidth = 100

// layout is the inner size of both panels. Each panel adds a one cell
// border on every side; the input and status rows take one line each.
type layout struct {
	stacked  bool
	listW    int
	listH    int
	previewW int
	previewH int
}

func computeLayout(width, height int) layout {
	if width <= 0 {
		width = sideBySideMinWidth
	}
	if height <= 0 {
		height = 26
	}
	body := max(height-2, 10)

	if width < sideBySideMinWidth {
		inner := max(width-2, 20)
		listH := max((body-4)*2/5, linesPerItem)
		return layout{
			stacked:  true,
			listW:    inner,
			listH:    listH,
			previewW: inner,
			previewH: max(body-4-listH, 3),
		}
	}

	listW := max(width*2/5-2, 20)
	return layout{
		listW:    listW,
		listH:    body - 2,
		previewW: max(width-listW-4, 20),
		previewH: body - 2,
	}
}
