package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [runID]",
		Short: "List recorded runs, or the skipped invocations of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 {
				run, err := db.GetRun(args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run not found: %s", args[0])
				}
				skips, err := db.GetSkips(run.RunID)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s  emitted=%d skipped=%d\n", run.RunID, run.CreatedAt, run.Emitted, run.Skipped)
				for _, s := range skips {
					switch {
					case len(s.Candidates) > 0:
						fmt.Printf("  line %d: %s for %s (candidates: %s)\n", s.Line, s.Reason, s.Basename, strings.Join(s.Candidates, ", "))
					case s.Basename != "":
						fmt.Printf("  line %d: %s for %s\n", s.Line, s.Reason, s.Basename)
					default:
						fmt.Printf("  line %d: %s: %s\n", s.Line, s.Reason, s.Text)
					}
				}
				return nil
			}

			runs, err := db.Runs(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s\t%s\temitted=%d\tskipped=%d\t%s\n", r.RunID, r.CreatedAt, r.Emitted, r.Skipped, r.InputLog)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs (0 = no limit)")

	return cmd
}
