// Package resolve turns the file argument of a compiler invocation into the
// directory that holds it.
//
// Resolution is conservative: a file name found in several directories is
// reported as Ambiguous and never narrowed down to one of them.
package resolve

import (
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/scan"
)

type Kind int

const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Location is the outcome of resolving one source token.
type Location struct {
	Kind       Kind
	Dir        string   // set when Kind == Unique
	Candidates []string // set when Kind == Ambiguous
}

// Resolve locates token. An absolute path to an existing file is taken as
// is; anything else is looked up by its base name in idx.
func Resolve(token string, idx *scan.Index) Location {
	if filepath.IsAbs(token) {
		if info, err := os.Stat(token); err == nil && info.Mode().IsRegular() {
			return Location{Kind: Unique, Dir: filepath.Dir(filepath.Clean(token))}
		}
	}

	name := parse.BaseName(token)
	if name == "" {
		return Location{Kind: NotFound}
	}

	dirs := idx.Lookup(name)
	switch len(dirs) {
	case 0:
		return Location{Kind: NotFound}
	case 1:
		return Location{Kind: Unique, Dir: dirs[0]}
	default:
		candidates := make([]string, len(dirs))
		copy(candidates, dirs)
		return Location{Kind: Ambiguous, Candidates: candidates}
	}
}
