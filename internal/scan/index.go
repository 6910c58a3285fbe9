package scan

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Index maps a source file name to every directory that holds a file with
// that name. It is never modified after BuildIndex returns, so lookups from
// several goroutines need no locking.
type Index struct {
	Root  string
	Files int // matching files seen
	dirs  map[string][]string
}

// Lookup returns the sorted directories containing name.
func (x *Index) Lookup(name string) []string {
	if x == nil {
		return nil
	}
	return x.dirs[foldName(name)]
}

// Len returns the number of distinct file names.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.dirs)
}

// Duplicates returns the names present in more than one directory.
func (x *Index) Duplicates() []string {
	var names []string
	for name, dirs := range x.dirs {
		if len(dirs) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// builder accumulates walk results before they are frozen into an Index.
// Directories are keyed by their real path so a tree reached twice through
// symlinks does not count as two candidates.
type builder struct {
	root     string // absolute root as given
	rootReal string // root with symlinks resolved
	files    int
	dirs     map[string]map[string]string // name -> real dir -> recorded dir
}

func newBuilder(root, rootReal string) *builder {
	return &builder{
		root:     root,
		rootReal: rootReal,
		dirs:     make(map[string]map[string]string),
	}
}

func (b *builder) add(name, dir, realDir string) {
	key := foldName(name)
	set, ok := b.dirs[key]
	if !ok {
		set = make(map[string]string)
		b.dirs[key] = set
	}
	prev, seen := set[realDir]
	if !seen {
		b.files++
	}
	if direct, ok := b.inTree(realDir); ok {
		set[realDir] = direct
		return
	}
	// only reachable through links out of the tree: keep the lexically
	// smallest walk path so the result does not depend on scheduling
	if !seen || dir < prev {
		set[realDir] = dir
	}
}

// inTree maps a real directory inside the root back to its path under the
// root as given, bypassing any symlinks the walk went through.
func (b *builder) inTree(realDir string) (string, bool) {
	rel, err := filepath.Rel(b.rootReal, realDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(b.root, rel), true
}

func (b *builder) freeze() *Index {
	x := &Index{
		Root:  b.root,
		Files: b.files,
		dirs:  make(map[string][]string, len(b.dirs)),
	}
	for name, set := range b.dirs {
		dirs := make([]string, 0, len(set))
		for _, d := range set {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		x.dirs[name] = dirs
	}
	return x
}

// foldName applies the host file system's case rules.
func foldName(name string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(name)
	}
	return name
}
