package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/compdb/internal/parse"
	"github.com/Zuo-Peng/compdb/internal/scan"
)

type Config struct {
	Compiler    string   `toml:"compiler" yaml:"compiler"`
	Extension   string   `toml:"extension" yaml:"extension"`
	Output      string   `toml:"output" yaml:"output"`
	DBPath      string   `toml:"db_path" yaml:"db_path"`
	Workers     int      `toml:"workers" yaml:"workers"`
	Record      bool     `toml:"record" yaml:"record"`
	DenyFlags   []string `toml:"deny_flags" yaml:"deny_flags"`
	ExcludeDirs []string `toml:"exclude_dirs" yaml:"exclude_dirs"`
}

// Default returns the built-in settings.
func Default(home string) *Config {
	return &Config{
		Compiler:    "cl.exe",
		Extension:   "cpp",
		Output:      "compile_commands.json",
		DBPath:      filepath.Join(home, ".config", "compdb", "compdb.db"),
		Workers:     runtime.NumCPU(),
		DenyFlags:   append([]string(nil), parse.DefaultDenyFlags...),
		ExcludeDirs: append([]string(nil), scan.DefaultExclude...),
	}
}

// DefaultPath is the config file read when none is given.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "compdb", "config.toml")
}

// Load reads the config file at path over the defaults. An empty path reads
// DefaultPath if it exists. Files ending in .yaml or .yml are YAML,
// everything else is TOML.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Default(home)

	explicit := path != ""
	if !explicit {
		path = DefaultPath(home)
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if err := decodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")
	cfg.Output = expandHome(cfg.Output, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		_, err := toml.DecodeFile(path, cfg)
		return err
	}
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
