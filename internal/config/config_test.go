package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
compiler = "clang-cl.exe"
extension = ".cc"
output = "~/out/compile_commands.json"
workers = 0
deny_flags = ["/Fo"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	home, _ := os.UserHomeDir()

	if cfg.Compiler != "clang-cl.exe" {
		t.Errorf("Compiler = %q", cfg.Compiler)
	}
	if cfg.Extension != "cc" {
		t.Errorf("Extension = %q, want cc", cfg.Extension)
	}
	if want := filepath.Join(home, "out", "compile_commands.json"); cfg.Output != want {
		t.Errorf("Output = %q, want %q", cfg.Output, want)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want NumCPU", cfg.Workers)
	}
	if !reflect.DeepEqual(cfg.DenyFlags, []string{"/Fo"}) {
		t.Errorf("DenyFlags = %v", cfg.DenyFlags)
	}
	if len(cfg.ExcludeDirs) == 0 {
		t.Error("ExcludeDirs default lost")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
compiler: cl.exe
extension: cxx
record: true
workers: 3
exclude_dirs: [build, out]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extension != "cxx" || !cfg.Record || cfg.Workers != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.ExcludeDirs, []string{"build", "out"}) {
		t.Errorf("ExcludeDirs = %v", cfg.ExcludeDirs)
	}
	if cfg.Output != "compile_commands.json" {
		t.Errorf("Output default lost: %q", cfg.Output)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing explicit config")
	}
	path := writeConfig(t, "bad.toml", "compiler = [")
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/home/u")
	if cfg.Compiler != "cl.exe" || cfg.Extension != "cpp" {
		t.Errorf("Default = %+v", cfg)
	}
	if cfg.DBPath != filepath.Join("/home/u", ".config", "compdb", "compdb.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	cfg.DenyFlags[0] = "changed"
	if Default("/home/u").DenyFlags[0] == "changed" {
		t.Error("Default shares the deny list")
	}
}
