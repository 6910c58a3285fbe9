package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	s := &Scanner{Compiler: "cl.exe", Extension: "cpp"}

	tests := []struct {
		name     string
		line     string
		match    bool
		wantSrc  string
		hasToken bool
	}{
		{"plain", "cl.exe /c /O2 foo.cpp", true, "foo.cpp", true},
		{"case insensitive compiler", "CL.EXE /c foo.cpp", true, "foo.cpp", true},
		{"compiler with path", `C:\VS\bin\cl.exe /c foo.cpp`, true, "foo.cpp", true},
		{"case insensitive extension", "cl.exe /c Foo.CPP", true, "Foo.CPP", true},
		{"last candidate wins", "cl.exe a.cpp b.cpp", true, "b.cpp", true},
		{"relative path token", `cl.exe /c ..\src\widget.cpp`, true, `..\src\widget.cpp`, true},
		{"option value skipped", "cl.exe /c foo.cpp /Fpbar.cpp", true, "foo.cpp", true},
		{"dash option skipped", "cl.exe -c foo.cpp -MFdeps.cpp", true, "foo.cpp", true},
		{"deny list value skipped", "cl.exe /c foo.cpp /FI pre.cpp", true, "foo.cpp", true},
		{"no source", "cl.exe /c /O2", true, "", false},
		{"other tool", "link.exe /OUT:a.exe foo.obj", false, "", false},
		{"compiler not first", "echo cl.exe foo.cpp", false, "", false},
		{"empty", "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := s.ParseLine(tt.line)
			if ok != tt.match {
				t.Fatalf("ParseLine(%q) matched = %v, want %v", tt.line, ok, tt.match)
			}
			if !ok {
				return
			}
			src, has := inv.SourceToken()
			if has != tt.hasToken || src != tt.wantSrc {
				t.Errorf("SourceToken() = %q, %v; want %q, %v", src, has, tt.wantSrc, tt.hasToken)
			}
		})
	}
}

func TestParseLineAbsoluteFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "abs.cpp")
	if err := os.WriteFile(src, []byte("int main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Scanner{Compiler: "cl.exe", Extension: "cpp"}
	inv, ok := s.ParseLine("cl.exe /c " + src)
	if !ok {
		t.Fatal("expected a match")
	}
	got, has := inv.SourceToken()
	if !has || got != src {
		t.Errorf("SourceToken() = %q, %v; want %q", got, has, src)
	}

	// a slash token that is not an existing file stays an option
	inv, _ = s.ParseLine("cl.exe /c /nonexistent/dir/x.cpp")
	if _, has := inv.SourceToken(); has {
		t.Error("expected no source token for a missing absolute path")
	}
}

func TestScan(t *testing.T) {
	log := strings.Join([]string{
		"Build started",
		"cl.exe /c /O2 ..\\src\\a.cpp",
		"link.exe /OUT:app.exe a.obj",
		"cl.exe /c b.cpp",
		"",
		"cl.exe /c /O2",
	}, "\n")

	s := &Scanner{Compiler: "cl.exe", Extension: ".cpp"}
	invs, lines, err := s.Scan(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if lines != 6 {
		t.Errorf("lines = %d, want 6", lines)
	}
	if len(invs) != 3 {
		t.Fatalf("got %d invocations, want 3", len(invs))
	}

	wantLines := []int{2, 4, 6}
	for i, inv := range invs {
		if inv.Line != wantLines[i] {
			t.Errorf("invs[%d].Line = %d, want %d", i, inv.Line, wantLines[i])
		}
	}
	if inv := invs[2]; inv.Source != -1 {
		t.Errorf("invs[2].Source = %d, want -1", inv.Source)
	}
}

func TestTokensKeepsOrder(t *testing.T) {
	inv := RawInvocation{Compiler: "cl.exe", Args: []string{"/c", "a.cpp"}, Source: 1}
	got := inv.Tokens()
	if len(got) != 3 || got[0] != "cl.exe" || got[2] != "a.cpp" {
		t.Errorf("Tokens() = %q", got)
	}
	// Tokens must not alias Args
	got[2] = "changed"
	if inv.Args[1] != "a.cpp" {
		t.Error("Tokens() aliases Args")
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo.cpp", "foo.cpp"},
		{`..\src\foo.cpp`, "foo.cpp"},
		{"src/foo.cpp", "foo.cpp"},
		{`C:\a/b\c.cpp`, "c.cpp"},
		{`dir\`, ""},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
