package compdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/resolve"
)

func TestBuild(t *testing.T) {
	inv := parse.RawInvocation{
		Compiler: "cl.exe",
		Args:     []string{"/c", "/O2", `..\src\widget.cpp`, "/Fowidget.obj"},
		Source:   2,
	}
	dir := filepath.Join("/work", "src")

	e, skip := Build(inv, resolve.Location{Kind: resolve.Unique, Dir: dir})
	if skip != nil {
		t.Fatalf("unexpected skip: %v", skip)
	}
	wantFile := filepath.Join(dir, "widget.cpp")
	if e.File != wantFile || e.Directory != dir {
		t.Errorf("entry = %+v", e)
	}
	wantArgs := []string{"cl.exe", "/c", "/O2", wantFile, "/Fowidget.obj"}
	if !reflect.DeepEqual(e.Arguments, wantArgs) {
		t.Errorf("Arguments = %q, want %q", e.Arguments, wantArgs)
	}
	if inv.Args[2] != `..\src\widget.cpp` {
		t.Error("Build modified the invocation")
	}
}

func TestBuildSkips(t *testing.T) {
	inv := parse.RawInvocation{Compiler: "cl.exe", Args: []string{"/c", "dup.cpp"}, Source: 1}

	tests := []struct {
		name string
		inv  parse.RawInvocation
		loc  resolve.Location
		want Reason
	}{
		{"missing", parse.RawInvocation{Compiler: "cl.exe", Args: []string{"/c"}, Source: -1}, resolve.Location{}, MissingSourceToken},
		{"ambiguous", inv, resolve.Location{Kind: resolve.Ambiguous, Candidates: []string{"/a", "/b"}}, AmbiguousPath},
		{"unresolved", inv, resolve.Location{Kind: resolve.NotFound}, UnresolvedPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, skip := Build(tt.inv, tt.loc)
			if skip == nil {
				t.Fatal("expected a skip")
			}
			if skip.Reason != tt.want {
				t.Errorf("Reason = %v, want %v", skip.Reason, tt.want)
			}
		})
	}
}

func TestSkipString(t *testing.T) {
	s := &Skip{Reason: AmbiguousPath, Basename: "dup.cpp", Candidates: []string{"/a", "/b"}}
	got := s.String()
	for _, want := range []string{"dup.cpp", "/a", "/b"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var db Database
	var buf bytes.Buffer
	if err := db.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty database = %q, want []", got)
	}
}

func TestWriteJSONFieldsAndOrder(t *testing.T) {
	var db Database
	db.Add(Entry{File: "/s/b.cpp", Directory: "/s", Arguments: []string{"cl.exe", "/s/b.cpp"}})
	db.Add(Entry{File: "/s/a.cpp", Directory: "/s", Arguments: []string{"cl.exe", "/s/a.cpp"}})
	db.Add(Entry{File: "/s/b.cpp", Directory: "/s", Arguments: []string{"cl.exe", "/s/b.cpp"}})

	var buf bytes.Buffer
	if err := db.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d entries, want 3", len(decoded))
	}
	wantFiles := []string{"/s/b.cpp", "/s/a.cpp", "/s/b.cpp"}
	for i, d := range decoded {
		if len(d) != 3 {
			t.Errorf("entry %d has keys %v", i, d)
		}
		if d["file"] != wantFiles[i] {
			t.Errorf("entry %d file = %v, want %s", i, d["file"], wantFiles[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	var db Database
	db.Add(Entry{File: "/s/a.cpp", Directory: "/s", Arguments: []string{"cl.exe", "/s/a.cpp"}})
	if err := db.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"file": "/s/a.cpp"`) {
		t.Errorf("unexpected content: %s", data)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".compile_commands.json.*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	var db Database
	err := db.WriteFile(filepath.Join(t.TempDir(), "no", "such", "out.json"))
	if !errors.Is(err, ErrWrite) {
		t.Errorf("err = %v, want ErrWrite", err)
	}
}
