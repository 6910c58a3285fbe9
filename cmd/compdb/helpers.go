package main

import (
	"fmt"

	"github.com/Zuo-Peng/compdb/internal/config"
	"github.com/Zuo-Peng/compdb/internal/store"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command) (*store.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := store.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// resolveRunID returns runID, or the latest recorded run when it is empty.
func resolveRunID(db *store.DB, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	run, err := db.LatestRun()
	if err != nil {
		return "", err
	}
	if run == nil {
		return "", fmt.Errorf("no recorded runs (run 'compdb generate --record' first)")
	}
	return run.RunID, nil
}
