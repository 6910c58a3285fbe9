package search

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/compdb/internal/compdb"
	"github.com/Zuo-Peng/compdb/internal/pipeline"
	"github.com/Zuo-Peng/compdb/internal/store"
)

func seed(t *testing.T) (*store.DB, string) {
	t.Helper()
	db, err := store.OpenDB(filepath.Join(t.TempDir(), "compdb.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	out := &compdb.Database{}
	out.Add(compdb.Entry{File: "/work/src/widget.cpp", Directory: "/work/src",
		Arguments: []string{"cl.exe", "/c", "/EHsc", "/work/src/widget.cpp"}})
	out.Add(compdb.Entry{File: "/work/app/main.cpp", Directory: "/work/app",
		Arguments: []string{"cl.exe", "/c", "/O2", "/work/app/main.cpp"}})
	out.Add(compdb.Entry{File: "/work/中文/界面.cpp", Directory: "/work/中文",
		Arguments: []string{"cl.exe", "/c", "/work/中文/界面.cpp"}})

	id, err := db.RecordRun(store.RunMeta{Compiler: "cl.exe", Extension: "cpp"}, &pipeline.Result{DB: out})
	if err != nil {
		t.Fatal(err)
	}
	return db, id
}

func TestSearchFTS(t *testing.T) {
	db, id := seed(t)

	results, err := Search(db, Options{Query: "widget.cpp"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.File != "/work/src/widget.cpp" || r.Seq != 0 || r.RunID != id {
		t.Errorf("result = %+v", r)
	}
	if r.Key() != id+":0" {
		t.Errorf("Key() = %q", r.Key())
	}
	if !strings.Contains(r.Snippet, ">>>") {
		t.Errorf("snippet has no highlight: %q", r.Snippet)
	}

	results, err = Search(db, Options{Query: "/O2"})
	if err != nil {
		t.Fatalf("Search(/O2): %v", err)
	}
	if len(results) != 1 || results[0].File != "/work/app/main.cpp" {
		t.Errorf("Search(/O2) = %+v", results)
	}
}

func TestSearchRunFilter(t *testing.T) {
	db, _ := seed(t)
	results, err := Search(db, Options{Query: "cpp", RunID: "no-such-run"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for an unknown run", len(results))
	}
}

func TestSearchCJK(t *testing.T) {
	db, _ := seed(t)
	results, err := Search(db, Options{Query: "界面"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Snippet, ">>>界面<<<") {
		t.Errorf("CJK search = %+v", results)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	db, _ := seed(t)
	results, err := Search(db, Options{Query: "   "})
	if err != nil || results != nil {
		t.Errorf("Search(blank) = %v, %v", results, err)
	}
}

func TestListAll(t *testing.T) {
	db, id := seed(t)
	results, err := ListAll(db, Options{RunID: id})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Seq != i {
			t.Errorf("results[%d].Seq = %d", i, r.Seq)
		}
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"widget", "widget"},
		{"main.cpp", `"main.cpp"`},
		{"/EHsc OR /O2", `"/EHsc" OR "/O2"`},
		{"wid*", "wid*"},
		{`a"b`, `"a""b"`},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeSnippet(t *testing.T) {
	got := makeSnippet("cl.exe /c /work/src/widget.cpp", "WIDGET", 4)
	if got != "...src/>>>widget<<<.cpp" {
		t.Errorf("makeSnippet = %q", got)
	}
}
