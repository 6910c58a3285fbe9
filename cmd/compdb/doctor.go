package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/compdb/internal/scan"
	"github.com/Zuo-Peng/compdb/internal/store"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	var inputLog, sourceDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, inputs, source index and history DB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Compiler:  %s\n", cfg.Compiler)
			fmt.Printf("  Extension: .%s\n", cfg.Extension)
			fmt.Printf("  Output:    %s\n", cfg.Output)
			fmt.Printf("  Workers:   %d\n", cfg.Workers)

			fmt.Println("\n=== Inputs ===")
			if inputLog != "" {
				checkFile("Log", inputLog)
			}
			if sourceDir != "" {
				checkDir("Source", sourceDir)

				fmt.Println("\n=== Source Index ===")
				idx, warnings, err := scan.BuildIndex(cmd.Context(), sourceDir, scan.Options{
					Extension: cfg.Extension,
					Workers:   cfg.Workers,
					Exclude:   cfg.ExcludeDirs,
				})
				if err != nil {
					fmt.Printf("  index error: %v\n", err)
				} else {
					fmt.Printf("  .%s files: %d\n", cfg.Extension, idx.Files)
					fmt.Printf("  Names:     %d\n", idx.Len())
					dups := idx.Duplicates()
					fmt.Printf("  Ambiguous: %d\n", len(dups))
					for _, name := range dups {
						fmt.Printf("    %s: %v\n", name, idx.Lookup(name))
					}
					for _, w := range warnings {
						fmt.Printf("  WARN: %v\n", w)
					}
				}
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'compdb generate --record' first)")
				return nil
			}

			db, err := store.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			runCount, err := db.RunCount()
			if err != nil {
				return fmt.Errorf("count runs: %w", err)
			}
			entryCount, err := db.EntryCount()
			if err != nil {
				return fmt.Errorf("count entries: %w", err)
			}
			fmt.Printf("  Runs:    %d\n", runCount)
			fmt.Printf("  Entries: %d\n", entryCount)

			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM entries_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else if ftsCount == entryCount {
				fmt.Println("  FTS5:    OK (synced)")
			} else {
				fmt.Printf("  FTS5:    MISMATCH (entries=%d, fts=%d)\n", entryCount, ftsCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputLog, "input-file", "i", "", "Path to msbuild.log to check")
	cmd.Flags().StringVarP(&sourceDir, "source-directory", "d", "", "Source directory to index")

	return cmd
}

func checkFile(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if info.IsDir() {
		fmt.Printf("  %s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK, %d bytes)\n", name, path, info.Size())
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
