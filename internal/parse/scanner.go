package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// DefaultDenyFlags are options whose separate value is a file name that is
// never the compiled source.
var DefaultDenyFlags = []string{
	"/FI", "/Fo", "/Fp", "/Fd", "/Fe", "/Fa", "/Yu", "/Yc", "/I",
	"-FI", "-I", "-include", "-o",
}

// Scanner picks compiler invocations out of a build log.
type Scanner struct {
	Compiler  string   // executable name, e.g. "cl.exe"
	Extension string   // source extension without the dot, e.g. "cpp"
	DenyFlags []string // nil means DefaultDenyFlags
}

// Scan reads r line by line and returns every invocation of the compiler
// together with the number of lines read. Lines that do not start with the
// compiler are ignored.
func (s *Scanner) Scan(r io.Reader) ([]RawInvocation, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var invs []RawInvocation
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		inv, ok := s.ParseLine(line)
		if !ok {
			continue
		}
		inv.Line = lineNum
		invs = append(invs, inv)
	}
	if err := scanner.Err(); err != nil {
		return invs, lineNum, fmt.Errorf("read line %d: %w", lineNum+1, err)
	}
	return invs, lineNum, nil
}

// ParseLine tokenizes one line and reports whether it invokes the compiler.
func (s *Scanner) ParseLine(line string) (RawInvocation, bool) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return RawInvocation{}, false
	}
	if !strings.EqualFold(BaseName(tokens[0]), s.Compiler) {
		return RawInvocation{}, false
	}
	args := tokens[1:]
	return RawInvocation{
		Text:     line,
		Compiler: tokens[0],
		Args:     args,
		Source:   s.sourceIndex(args),
	}, true
}

// sourceIndex finds the last argument that looks like the compiled file.
func (s *Scanner) sourceIndex(args []string) int {
	suffix := "." + strings.ToLower(strings.TrimPrefix(s.Extension, "."))
	deny := s.DenyFlags
	if deny == nil {
		deny = DefaultDenyFlags
	}

	for i := len(args) - 1; i >= 0; i-- {
		tok := args[i]
		if !strings.HasSuffix(strings.ToLower(tok), suffix) {
			continue
		}
		if isOption(tok) {
			continue
		}
		if i > 0 && hasFlag(deny, args[i-1]) {
			continue
		}
		return i
	}
	return -1
}

// isOption reports whether tok is a compiler switch. A leading '/' is
// ambiguous on POSIX hosts, so a token naming an existing absolute file is
// treated as a path.
func isOption(tok string) bool {
	switch {
	case strings.HasPrefix(tok, "-"):
		return true
	case strings.HasPrefix(tok, "/"):
		return !isAbsFile(tok)
	}
	return false
}

func isAbsFile(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func hasFlag(flags []string, tok string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, tok) {
			return true
		}
	}
	return false
}

// BaseName returns the last path component, splitting on both '/' and '\'
// regardless of the host.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
