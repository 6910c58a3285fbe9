package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/compdb/internal/store"
)

const (
	colorReset   = "\033[0m"
	colorLabel   = "\033[1;34m" // bold blue
	colorFile    = "\033[1;32m" // bold green
	colorSwitch  = "\033[2;36m" // dim cyan for compiler switches
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Width int    // wrap width (0 = no wrap)
	Query string // search query for keyword highlighting
	Plain bool   // no ANSI colours
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		switch term {
		case "AND", "OR", "NOT":
			continue
		}
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// RenderEntry renders one recorded entry: its run, file, directory and one
// argument per line.
func RenderEntry(db *store.DB, key string, opts Options) (string, error) {
	runID, seq, err := store.ParseKey(key)
	if err != nil {
		return "", err
	}
	entry, err := db.GetEntry(runID, seq)
	if err != nil {
		return "", fmt.Errorf("get entry: %w", err)
	}
	if entry == nil {
		return "", fmt.Errorf("entry not found: %s", key)
	}
	run, err := db.GetRun(runID)
	if err != nil {
		return "", fmt.Errorf("get run: %w", err)
	}

	paint := func(color, s string) string {
		if opts.Plain {
			return s
		}
		return color + s + colorReset
	}

	var b strings.Builder
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}
	highlight := func(s string) string {
		if opts.Plain {
			return s
		}
		return highlightKeywords(s, opts.Query)
	}

	if run != nil {
		writeLine(paint(colorDim, fmt.Sprintf("--- %s [%s] %s ---", key, run.CreatedAt, run.InputLog)))
	} else {
		writeLine(paint(colorDim, fmt.Sprintf("--- %s ---", key)))
	}
	writeLine(paint(colorLabel, "file      ") + paint(colorFile, highlight(entry.File)))
	writeLine(paint(colorLabel, "directory ") + highlight(entry.Directory))
	writeLine(paint(colorLabel, "arguments"))
	for i, arg := range entry.Arguments {
		text := highlight(arg)
		switch {
		case i == 0:
		case arg == entry.File:
			text = paint(colorFile, text)
		case strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "-"):
			text = paint(colorSwitch, text)
		}
		writeLine("  " + text)
	}
	return b.String(), nil
}
