package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/valpere/codetran/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend != "ollama" {
		t.Errorf("backend = %q", cfg.Backend)
	}
	if cfg.Model != "qwen2.5:1.5b" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.SourceLang != "zh" || cfg.TargetLang != "en" {
		t.Errorf("langs = %q -> %q", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.Workers != 4 || !cfg.Recursive || cfg.TranslateAll {
		t.Errorf("unexpected processing defaults: %+v", cfg)
	}
	if cfg.MaxChunkSize != 5000 {
		t.Errorf("max chunk size = %d", cfg.MaxChunkSize)
	}
	if cfg.MaxFileSize != 1<<20 {
		t.Errorf("max file size = %d", cfg.MaxFileSize)
	}
	if len(cfg.SkipDirs) == 0 || len(cfg.SkipExtensions) == 0 {
		t.Error("skip lists should be seeded by default")
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "backend: echo\ntarget_lang: uk\nworkers: 8\nskip_dirs:\n  - only_this\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir, "", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend != "echo" {
		t.Errorf("backend = %q, want echo from config file", cfg.Backend)
	}
	if cfg.TargetLang != "uk" || cfg.Workers != 8 {
		t.Errorf("got %q / %d", cfg.TargetLang, cfg.Workers)
	}
	if len(cfg.SkipDirs) != 1 || cfg.SkipDirs[0] != "only_this" {
		t.Errorf("skip dirs = %v", cfg.SkipDirs)
	}
	// Untouched keys keep their defaults.
	if cfg.Model != "qwen2.5:1.5b" {
		t.Errorf("model = %q", cfg.Model)
	}
}

func TestLoad_ConfigFoundInParentDir(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, config.ConfigName), []byte("workers: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(sub, "", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Workers != 9 {
		t.Errorf("workers = %d, want 9 from ancestor config", cfg.Workers)
	}
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("backend", "ollama", "")
	fs.String("target-lang", "en", "")
	fs.Int("workers", 4, "")
	fs.Bool("dry-run", false, "")
	return fs
}

func TestLoad_ChangedFlagBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigName), []byte("workers: 8\nbackend: echo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := newFlags()
	if err := fs.Parse([]string{"--workers", "2", "--dry-run"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir, "", fs)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d, changed flag should win over config file", cfg.Workers)
	}
	if !cfg.DryRun {
		t.Error("dry-run flag should be honored")
	}
	// Flag left at its default must not shadow the config file.
	if cfg.Backend != "echo" {
		t.Errorf("backend = %q, unchanged flag must not override config file", cfg.Backend)
	}
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(explicit, []byte("target_lang: de\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(t.TempDir(), explicit, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.TargetLang != "de" {
		t.Errorf("target lang = %q", cfg.TargetLang)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	write := func(content string) {
		if err := os.WriteFile(filepath.Join(dir, config.ConfigName), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("backend: carrier-pigeon\n")
	if _, err := config.Load(dir, "", nil); err == nil {
		t.Error("expected error for unknown backend")
	}

	write("workers: 0\n")
	if _, err := config.Load(dir, "", nil); err == nil {
		t.Error("expected error for zero workers")
	}

	write("target_lang: \"\"\n")
	if _, err := config.Load(dir, "", nil); err == nil {
		t.Error("expected error for empty target language")
	}
}
