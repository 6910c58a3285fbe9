package parse

// RawInvocation is one compiler command line found in the build log.
type RawInvocation struct {
	Line     int      // 1-based line number in the log
	Text     string   // original log line
	Compiler string   // first token, verbatim
	Args     []string // remaining tokens in order
	Source   int      // index into Args of the source file token, -1 if none
}

// SourceToken returns the argument naming the compiled file.
func (inv RawInvocation) SourceToken() (string, bool) {
	if inv.Source < 0 || inv.Source >= len(inv.Args) {
		return "", false
	}
	return inv.Args[inv.Source], true
}

// Tokens returns the compiler followed by its arguments.
func (inv RawInvocation) Tokens() []string {
	out := make([]string, 0, len(inv.Args)+1)
	out = append(out, inv.Compiler)
	return append(out, inv.Args...)
}
