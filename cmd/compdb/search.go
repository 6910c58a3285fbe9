package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/compdb/internal/search"
	"github.com/Zuo-Peng/compdb/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over recorded entries",
		Long: `Search the files and arguments of recorded entries using FTS5. Output is TSV
for fzf integration:
  key, file, directory, snippet

Recommended shell function:
  compdbf() {
    compdb search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=2.. \
      --preview 'compdb preview {1} --query {q}' \
      --bind 'enter:execute(compdb open {1})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				RunID: runID,
				Limit: limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.NewReplacer("\t", " ", "\n", " ").Replace(r.Snippet)
				// first field stays plain for fzf {1}
				fmt.Printf("%s\t%s%s%s\t%s%s%s\t%s\n",
					r.Key(),
					sColorGreen, r.File, sColorReset,
					sColorDim, r.Directory, sColorReset,
					colorizeSnippet(snippet),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only search entries of this run")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
