package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/compdb/internal/config"
	"github.com/Zuo-Peng/compdb/internal/pipeline"
	"github.com/Zuo-Peng/compdb/internal/report"
	"github.com/Zuo-Peng/compdb/internal/store"
	"github.com/Zuo-Peng/compdb/internal/watch"
	"github.com/spf13/cobra"
)

// keepRuns bounds the number of recorded runs.
const keepRuns = 50

type generateInput struct {
	inputLog  string
	sourceDir string
}

func generateCmd() *cobra.Command {
	var in generateInput
	var output, compiler, extension string
	var workers int
	var record, watchLog bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate compile_commands.json from an MSBuild log",
		Long: `Scan an MSBuild log for compiler invocations and write a clang compilation
database. Source files named without a directory are looked up by name under
the source directory; names found in more than one directory are skipped with
a diagnostic instead of guessed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("output-file") {
				cfg.Output = output
			}
			if flags.Changed("compiler-executable") {
				cfg.Compiler = compiler
			}
			if flags.Changed("extension") {
				cfg.Extension = extension
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("record") {
				cfg.Record = record
			}

			rep := report.Stderr()
			ctx := cmd.Context()

			job := func() error {
				return generate(ctx, rep, cfg, in)
			}
			if err := job(); err != nil {
				if !watchLog {
					return err
				}
				rep.Warn(err)
			}
			if !watchLog {
				return nil
			}

			rep.Printf("Watching %s for changes (Ctrl-C to stop) ...\n", in.inputLog)
			return watch.File(ctx, in.inputLog, watch.DefaultDebounce, job, rep.Warn)
		},
	}

	cmd.Flags().StringVarP(&in.inputLog, "input-file", "i", "", "Path to msbuild.log")
	cmd.Flags().StringVarP(&in.sourceDir, "source-directory", "d", "", "Path to source code")
	cmd.Flags().StringVarP(&output, "output-file", "o", "compile_commands.json", "Output JSON file")
	cmd.Flags().StringVarP(&compiler, "compiler-executable", "c", "cl.exe", "Name of compiler `EXE`")
	cmd.Flags().StringVarP(&extension, "extension", "e", "cpp", "Source file extension")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in the history database")
	cmd.Flags().BoolVar(&watchLog, "watch", false, "Regenerate whenever the log file changes")
	_ = cmd.MarkFlagRequired("input-file")
	_ = cmd.MarkFlagRequired("source-directory")

	return cmd
}

// generate runs the pipeline once and writes the database. Nothing is
// written when the pipeline fails.
func generate(ctx context.Context, rep *report.Reporter, cfg *config.Config, in generateInput) error {
	start := time.Now()

	var db *store.DB
	if cfg.Record {
		var err error
		db, err = store.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
	}

	rep.Printf("Preparing the lookup index for %s ...\n", in.sourceDir)
	res, err := pipeline.Run(ctx, pipeline.Options{
		InputLog:    in.inputLog,
		SourceDir:   in.sourceDir,
		Compiler:    cfg.Compiler,
		Extension:   cfg.Extension,
		Workers:     cfg.Workers,
		DenyFlags:   cfg.DenyFlags,
		ExcludeDirs: cfg.ExcludeDirs,
		Progress:    rep.Progress,
	})
	if err != nil {
		return err
	}

	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	rep.Printf("Writing %s database ...\n", output)
	if err := res.DB.WriteFile(output); err != nil {
		return err
	}
	rep.Result(res, output, time.Since(start))

	if db == nil {
		return nil
	}
	runID, err := db.RecordRun(store.RunMeta{
		InputLog:  absOrSelf(in.inputLog),
		SourceDir: res.Index.Root,
		Output:    output,
		Compiler:  cfg.Compiler,
		Extension: cfg.Extension,
	}, res)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if _, err := db.Prune(keepRuns); err != nil {
		rep.Warn(fmt.Errorf("prune history: %w", err))
	}
	rep.Printf("Recorded run %s\n", runID)
	return nil
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
