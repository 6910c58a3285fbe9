// Package compdb builds compile_commands.json entries from resolved compiler
// invocations and writes the database.
package compdb

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/resolve"
)

// Entry is one record of a clang compilation database.
type Entry struct {
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
}

type Reason int

const (
	MissingSourceToken Reason = iota + 1
	AmbiguousPath
	UnresolvedPath
)

func (r Reason) String() string {
	switch r {
	case MissingSourceToken:
		return "missing source file"
	case AmbiguousPath:
		return "ambiguous path"
	case UnresolvedPath:
		return "path not found"
	default:
		return "unknown"
	}
}

// Skip explains why an invocation produced no entry.
type Skip struct {
	Reason     Reason
	Basename   string
	Candidates []string
}

func (s *Skip) String() string {
	switch s.Reason {
	case MissingSourceToken:
		return s.Reason.String()
	case AmbiguousPath:
		return fmt.Sprintf("%s for %s (candidates: %s)", s.Reason, s.Basename, strings.Join(s.Candidates, ", "))
	default:
		return fmt.Sprintf("%s for %s", s.Reason, s.Basename)
	}
}

// Build turns an invocation and its resolved location into an entry. It
// returns a Skip instead when the location is not unique.
func Build(inv parse.RawInvocation, loc resolve.Location) (Entry, *Skip) {
	token, ok := inv.SourceToken()
	if !ok {
		return Entry{}, &Skip{Reason: MissingSourceToken}
	}
	name := parse.BaseName(token)

	switch loc.Kind {
	case resolve.Unique:
	case resolve.Ambiguous:
		return Entry{}, &Skip{Reason: AmbiguousPath, Basename: name, Candidates: loc.Candidates}
	default:
		return Entry{}, &Skip{Reason: UnresolvedPath, Basename: name}
	}

	file := filepath.Join(loc.Dir, name)
	args := inv.Tokens()
	args[inv.Source+1] = file

	return Entry{
		File:      file,
		Directory: loc.Dir,
		Arguments: args,
	}, nil
}
