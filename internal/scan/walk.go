package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultExclude lists version control and IDE directories that never hold
// sources of the build.
var DefaultExclude = []string{".git", ".svn", ".hg", ".vs"}

// ErrNotDir is returned when the index root is not a directory.
var ErrNotDir = errors.New("not a directory")

type Options struct {
	Extension string   // without the dot
	Workers   int      // concurrent directory reads, 0 = NumCPU
	Exclude   []string // directory names to skip, nil = DefaultExclude
}

// BuildIndex walks root and records the directory of every regular file
// ending in the configured extension. Symlinked directories are followed;
// a link back to one of its own ancestors is not. Sub-directories that
// cannot be read are returned as warnings, while an unreadable root is an
// error.
func BuildIndex(ctx context.Context, root string, opts Options) (*Index, []error, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: %w", abs, ErrNotDir)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	w := &walker{
		ctx:     gctx,
		g:       g,
		suffix:  "." + strings.ToLower(strings.TrimPrefix(opts.Extension, ".")),
		exclude: exclude,
	}
	rootReal := realPath(abs)
	w.b = newBuilder(abs, rootReal)
	w.process(abs, rootReal, []string{rootReal}, entries)

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	sort.Slice(w.warnings, func(i, j int) bool {
		return w.warnings[i].Error() < w.warnings[j].Error()
	})
	return w.b.freeze(), w.warnings, nil
}

type walker struct {
	ctx     context.Context
	g       *errgroup.Group
	suffix  string
	exclude []string

	mu       sync.Mutex
	b        *builder
	warnings []error
}

func (w *walker) process(dir, realDir string, ancestors []string, entries []os.DirEntry) {
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		mode := e.Type()

		if mode&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.warn(fmt.Errorf("follow link %s: %w", path, err))
				continue
			}
			mode = info.Mode()
		}

		switch {
		case mode.IsDir():
			w.dir(path, ancestors)
		case mode.IsRegular():
			if strings.HasSuffix(strings.ToLower(e.Name()), w.suffix) {
				w.mu.Lock()
				w.b.add(e.Name(), dir, realDir)
				w.mu.Unlock()
			}
		}
	}
}

func (w *walker) dir(path string, ancestors []string) {
	if w.excluded(filepath.Base(path)) {
		return
	}
	rp := realPath(path)
	for _, a := range ancestors {
		if a == rp {
			return // symlink cycle
		}
	}
	chain := make([]string, len(ancestors)+1)
	copy(chain, ancestors)
	chain[len(ancestors)] = rp

	task := func() error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			w.warn(fmt.Errorf("read dir %s: %w", path, err))
		}
		w.process(path, rp, chain, entries)
		return nil
	}
	// all workers busy: read inline rather than block on the group
	if !w.g.TryGo(task) {
		_ = task()
	}
}

func (w *walker) excluded(name string) bool {
	for _, x := range w.exclude {
		if strings.EqualFold(x, name) {
			return true
		}
	}
	return false
}

func (w *walker) warn(err error) {
	w.mu.Lock()
	w.warnings = append(w.warnings, err)
	w.mu.Unlock()
}

func realPath(path string) string {
	if rp, err := filepath.EvalSymlinks(path); err == nil {
		return rp
	}
	return path
}
