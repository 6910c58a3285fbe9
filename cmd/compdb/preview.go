package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/compdb/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func previewCmd() *cobra.Command {
	var width int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <runID:seq>",
		Short: "Show one recorded entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			out, err := render.RenderEntry(db, args[0], render.Options{
				Width: width,
				Query: query,
				Plain: !term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("FZF_PREVIEW_COLUMNS") == "",
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
