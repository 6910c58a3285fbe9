// Package pipeline runs a build log through scanning, source indexing,
// resolution and entry building, and collects the resulting database along
// with a diagnostic for every invocation that had to be skipped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/compdb/internal/compdb"
	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/resolve"
	"github.com/Zuo-Peng/compdb/internal/scan"
)

var (
	ErrInputLog  = errors.New("input log")
	ErrSourceDir = errors.New("source directory")
)

// chunkSize is the number of invocations resolved per worker task.
const chunkSize = 256

type Options struct {
	InputLog    string
	SourceDir   string
	Compiler    string
	Extension   string
	Workers     int
	DenyFlags   []string
	ExcludeDirs []string

	// Progress, when set, is called with the log size and returns a writer
	// that receives every byte read from the log.
	Progress func(size int64) io.Writer
}

type Stats struct {
	Lines        int
	Invocations  int
	Emitted      int
	Missing      int
	Ambiguous    int
	Unresolved   int
	IndexedFiles int
	IndexedNames int
	WalkErrors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d invocations=%d emitted=%d ambiguous=%d unresolved=%d missing=%d",
		s.Lines, s.Invocations, s.Emitted, s.Ambiguous, s.Unresolved, s.Missing)
}

// Skipped returns the number of invocations without an entry.
func (s Stats) Skipped() int {
	return s.Missing + s.Ambiguous + s.Unresolved
}

// Diagnostic describes one skipped invocation.
type Diagnostic struct {
	Line int
	Text string
	Skip *compdb.Skip
}

const maxQuoted = 120

func (d Diagnostic) String() string {
	if d.Skip.Reason == compdb.MissingSourceToken {
		text := d.Text
		if len(text) > maxQuoted {
			cut := maxQuoted
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + "..."
		}
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Skip, text)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Skip)
}

type Result struct {
	DB          *compdb.Database
	Diagnostics []Diagnostic
	Warnings    []error // unreadable directories under the source root
	Index       *scan.Index
	Stats       Stats
}

// Run executes the pipeline. The returned error is fatal; skipped
// invocations are reported in Result.Diagnostics.
func Run(ctx context.Context, opts Options) (*Result, error) {
	f, err := os.Open(opts.InputLog)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputLog, err)
	}
	defer f.Close()

	idx, warnings, err := scan.BuildIndex(ctx, opts.SourceDir, scan.Options{
		Extension: opts.Extension,
		Workers:   opts.Workers,
		Exclude:   opts.ExcludeDirs,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceDir, err)
	}

	var r io.Reader = f
	if opts.Progress != nil {
		if info, err := f.Stat(); err == nil {
			r = io.TeeReader(f, opts.Progress(info.Size()))
		}
	}

	sc := &parse.Scanner{
		Compiler:  opts.Compiler,
		Extension: opts.Extension,
		DenyFlags: opts.DenyFlags,
	}
	invs, lines, err := sc.Scan(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputLog, err)
	}

	outcomes, err := resolveAll(ctx, invs, idx, opts.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		DB:       &compdb.Database{},
		Warnings: warnings,
		Index:    idx,
		Stats: Stats{
			Lines:        lines,
			Invocations:  len(invs),
			IndexedFiles: idx.Files,
			IndexedNames: idx.Len(),
			WalkErrors:   len(warnings),
		},
	}
	for i, o := range outcomes {
		if o.skip == nil {
			res.DB.Add(o.entry)
			res.Stats.Emitted++
			continue
		}
		switch o.skip.Reason {
		case compdb.MissingSourceToken:
			res.Stats.Missing++
		case compdb.AmbiguousPath:
			res.Stats.Ambiguous++
		default:
			res.Stats.Unresolved++
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Line: invs[i].Line,
			Text: invs[i].Text,
			Skip: o.skip,
		})
	}
	return res, nil
}

type outcome struct {
	entry compdb.Entry
	skip  *compdb.Skip
}

// resolveAll resolves invocations concurrently. Each task fills its own
// slots of the result slice, so log order is kept without locking.
func resolveAll(ctx context.Context, invs []parse.RawInvocation, idx *scan.Index, workers int) ([]outcome, error) {
	out := make([]outcome, len(invs))
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(invs); start += chunkSize {
		start := start
		end := min(start+chunkSize, len(invs))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = resolveOne(invs[i], idx)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveOne(inv parse.RawInvocation, idx *scan.Index) outcome {
	token, ok := inv.SourceToken()
	if !ok {
		_, skip := compdb.Build(inv, resolve.Location{})
		return outcome{skip: skip}
	}
	entry, skip := compdb.Build(inv, resolve.Resolve(token, idx))
	return outcome{entry: entry, skip: skip}
}
