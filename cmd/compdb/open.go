package main

import (
	"github.com/Zuo-Peng/compdb/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <runID:seq>",
		Short: "Open the source file of a recorded entry in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenEntry(db, args[0])
		},
	}
}
