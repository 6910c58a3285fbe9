package main

import (
	"os"

	"github.com/Zuo-Peng/compdb/internal/compdb"
	"github.com/Zuo-Peng/compdb/internal/search"
	"github.com/Zuo-Peng/compdb/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [runID]",
		Short: "Browse the entries of a recorded run (latest by default)",
		Long: `Opens a TUI panel listing the entries of a recorded run in log order. Type to
search. When stdout is not a terminal the run is written as a
compile_commands.json document instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			var runID string
			if len(args) == 1 {
				runID = args[0]
			}
			runID, err = resolveRunID(db, runID)
			if err != nil {
				return err
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunList(db, search.Options{RunID: runID})
			}

			rows, err := db.GetEntries(runID)
			if err != nil {
				return err
			}
			var out compdb.Database
			for _, r := range rows {
				out.Add(r.Entry())
			}
			return out.WriteJSON(os.Stdout)
		},
	}

	return cmd
}
