package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/compdb/internal/compdb"
	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/pipeline"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    created_at  TEXT NOT NULL,
    input_log   TEXT NOT NULL,
    source_dir  TEXT NOT NULL,
    output      TEXT NOT NULL DEFAULT '',
    compiler    TEXT NOT NULL,
    extension   TEXT NOT NULL,
    lines       INTEGER NOT NULL DEFAULT 0,
    invocations INTEGER NOT NULL DEFAULT 0,
    emitted     INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entries (
    run_id    TEXT NOT NULL,
    seq       INTEGER NOT NULL,
    file      TEXT NOT NULL,
    directory TEXT NOT NULL,
    arguments TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS skips (
    run_id      TEXT NOT NULL,
    line_number INTEGER NOT NULL,
    reason      TEXT NOT NULL,
    basename    TEXT NOT NULL DEFAULT '',
    candidates  TEXT NOT NULL DEFAULT '',
    text        TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
    file,
    arguments,
    content=entries,
    content_rowid=rowid,
    tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
    INSERT INTO entries_fts(rowid, file, arguments) VALUES (new.rowid, new.file, new.arguments);
END;

CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, file, arguments) VALUES('delete', old.rowid, old.file, old.arguments);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion is bumped whenever a table changes shape. Recorded runs
// from an older version are dropped.
const schemaVersion = "1"

const timeLayout = "2006-01-02T15:04:05Z"

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	if _, err := d.db.Exec(schema); err != nil {
		return err
	}
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if ver != "" {
		for _, table := range []string{"entries_fts", "entries", "skips", "runs"} {
			if _, err := d.db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return err
			}
		}
		if _, err := d.db.Exec(schema); err != nil {
			return err
		}
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// RunMeta describes the inputs of a recorded run.
type RunMeta struct {
	InputLog  string
	SourceDir string
	Output    string
	Compiler  string
	Extension string
	CreatedAt time.Time
}

// RecordRun stores a finished pipeline run and returns its ID.
func (d *DB) RecordRun(meta RunMeta, res *pipeline.Result) (string, error) {
	runID := uuid.NewString()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, input_log, source_dir, output, compiler, extension, lines, invocations, emitted, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		meta.CreatedAt.UTC().Format(timeLayout),
		meta.InputLog,
		meta.SourceDir,
		meta.Output,
		meta.Compiler,
		meta.Extension,
		res.Stats.Lines,
		res.Stats.Invocations,
		res.Stats.Emitted,
		res.Stats.Skipped(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	entryStmt, err := tx.Prepare(
		`INSERT INTO entries (run_id, seq, file, directory, arguments) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer entryStmt.Close()

	for i, e := range res.DB.Entries() {
		if _, err := entryStmt.Exec(runID, i, e.File, e.Directory, parse.Join(e.Arguments)); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}

	skipStmt, err := tx.Prepare(
		`INSERT INTO skips (run_id, line_number, reason, basename, candidates, text) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer skipStmt.Close()

	for _, diag := range res.Diagnostics {
		_, err := skipStmt.Exec(
			runID,
			diag.Line,
			diag.Skip.Reason.String(),
			diag.Skip.Basename,
			parse.Join(diag.Skip.Candidates),
			diag.Text,
		)
		if err != nil {
			return "", fmt.Errorf("insert skip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

type RunRow struct {
	RunID       string
	CreatedAt   string
	InputLog    string
	SourceDir   string
	Output      string
	Compiler    string
	Extension   string
	Lines       int
	Invocations int
	Emitted     int
	Skipped     int
}

const runColumns = `run_id, created_at, input_log, source_dir, output, compiler, extension, lines, invocations, emitted, skipped`

func scanRun(row interface{ Scan(...any) error }) (*RunRow, error) {
	var r RunRow
	err := row.Scan(&r.RunID, &r.CreatedAt, &r.InputLog, &r.SourceDir, &r.Output,
		&r.Compiler, &r.Extension, &r.Lines, &r.Invocations, &r.Emitted, &r.Skipped)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Runs returns recorded runs, newest first. limit <= 0 returns all.
func (d *DB) Runs(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(
		"SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given ID, or nil if there is none.
func (d *DB) GetRun(runID string) (*RunRow, error) {
	r, err := scanRun(d.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// LatestRun returns the most recent run, or nil if nothing was recorded.
func (d *DB) LatestRun() (*RunRow, error) {
	runs, err := d.Runs(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

type EntryRow struct {
	RunID     string
	Seq       int
	File      string
	Directory string
	Arguments []string
}

func (e EntryRow) Key() string {
	return FormatKey(e.RunID, e.Seq)
}

func (e EntryRow) Entry() compdb.Entry {
	return compdb.Entry{File: e.File, Directory: e.Directory, Arguments: e.Arguments}
}

// GetEntry returns one entry, or nil if it does not exist.
func (d *DB) GetEntry(runID string, seq int) (*EntryRow, error) {
	var e EntryRow
	var args string
	err := d.db.QueryRow(
		"SELECT run_id, seq, file, directory, arguments FROM entries WHERE run_id = ? AND seq = ?",
		runID, seq,
	).Scan(&e.RunID, &e.Seq, &e.File, &e.Directory, &args)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Arguments = parse.Tokenize(args)
	return &e, nil
}

// GetEntries returns the entries of a run in log order.
func (d *DB) GetEntries(runID string) ([]EntryRow, error) {
	rows, err := d.db.Query(
		"SELECT run_id, seq, file, directory, arguments FROM entries WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []EntryRow
	for rows.Next() {
		var e EntryRow
		var args string
		if err := rows.Scan(&e.RunID, &e.Seq, &e.File, &e.Directory, &args); err != nil {
			return nil, err
		}
		e.Arguments = parse.Tokenize(args)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type SkipRow struct {
	Line       int
	Reason     string
	Basename   string
	Candidates []string
	Text       string
}

// GetSkips returns the skipped invocations of a run in log order.
func (d *DB) GetSkips(runID string) ([]SkipRow, error) {
	rows, err := d.db.Query(
		"SELECT line_number, reason, basename, candidates, text FROM skips WHERE run_id = ? ORDER BY line_number",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skips []SkipRow
	for rows.Next() {
		var s SkipRow
		var candidates string
		if err := rows.Scan(&s.Line, &s.Reason, &s.Basename, &candidates, &s.Text); err != nil {
			return nil, err
		}
		s.Candidates = parse.Tokenize(candidates)
		skips = append(skips, s)
	}
	return skips, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were
// removed.
func (d *DB) Prune(keep int) (int, error) {
	runs, err := d.Runs(0)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for i := keep; i < len(runs); i++ {
		if err := d.DeleteRun(runs[i].RunID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (d *DB) DeleteRun(runID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM entries WHERE run_id = ?",
		"DELETE FROM skips WHERE run_id = ?",
		"DELETE FROM runs WHERE run_id = ?",
	} {
		if _, err := tx.Exec(q, runID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) RunCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func (d *DB) EntryCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}
