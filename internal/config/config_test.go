package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/boardgen/internal/boards"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Output != def.Output {
		t.Errorf("Output = %q, want %q", cfg.Output, def.Output)
	}
	if cfg.Format != FormatBits {
		t.Errorf("Format = %q, want %q", cfg.Format, FormatBits)
	}
	if cfg.BrandPrefix != "Arduino" {
		t.Errorf("BrandPrefix = %q, want %q", cfg.BrandPrefix, "Arduino")
	}
	if cfg.MaxExamples != 3 {
		t.Errorf("MaxExamples = %d, want 3", cfg.MaxExamples)
	}
	if cfg.IncludeAll() {
		t.Error("IncludeAll() = true, want false")
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"output": "out/boards.json", "format": "legacy", "all": true, "max_examples": 5}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "out/boards.json" {
		t.Errorf("Output = %q, want %q", cfg.Output, "out/boards.json")
	}
	if cfg.Format != FormatLegacy {
		t.Errorf("Format = %q, want %q", cfg.Format, FormatLegacy)
	}
	if !cfg.IncludeAll() {
		t.Error("IncludeAll() = false, want true")
	}
	if cfg.MaxExamples != 5 {
		t.Errorf("MaxExamples = %d, want 5", cfg.MaxExamples)
	}
	// Unset fields keep defaults.
	if cfg.BrandPrefix != "Arduino" {
		t.Errorf("BrandPrefix = %q, want %q", cfg.BrandPrefix, "Arduino")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown format", content: `{"format": "yaml"}`},
		{name: "negative max examples", content: `{"max_examples": -1}`},
		{name: "non-numeric width", content: `{"extra_prefixes": {"wide": ["X"]}}`},
		{name: "unsupported width", content: `{"extra_prefixes": {"12": ["X"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)
			if _, err := Load(tmpDir); err == nil {
				t.Fatalf("Load() expected error, got nil")
			}
		})
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"source": "manifests", "location": "/opt/platforms", "extra_harvard": ["PIC16"], "extra_prefixes": {"32": ["CH32V"]}}`)
	writeConfig(t, filepath.Join(repoRoot, RepoDirName), `{"source": "fixture", "extra_harvard": ["PIC18", "PIC16"], "extra_prefixes": {"32": ["GD32F"], "64": ["JH7110"]}}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	// Repo overrides scalar
	if cfg.Source != "fixture" {
		t.Errorf("Source = %q, want %q (repo override)", cfg.Source, "fixture")
	}
	// Global scalar survives when repo leaves it unset
	if cfg.Location != "/opt/platforms" {
		t.Errorf("Location = %q, want %q", cfg.Location, "/opt/platforms")
	}
	// Lists merged and deduplicated
	if len(cfg.ExtraHarvard) != 2 || cfg.ExtraHarvard[0] != "PIC16" || cfg.ExtraHarvard[1] != "PIC18" {
		t.Errorf("ExtraHarvard = %v, want [PIC16 PIC18]", cfg.ExtraHarvard)
	}
	if got := cfg.ExtraPrefixes["32"]; len(got) != 2 || got[0] != "CH32V" || got[1] != "GD32F" {
		t.Errorf("ExtraPrefixes[32] = %v, want [CH32V GD32F]", got)
	}
	if got := cfg.ExtraPrefixes["64"]; len(got) != 1 || got[0] != "JH7110" {
		t.Errorf("ExtraPrefixes[64] = %v, want [JH7110]", got)
	}
}

func TestLoadWithRepo_NestedStartDir(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, RepoDirName), `{"brand_prefix": "Adafruit"}`)

	nested := filepath.Join(repoRoot, "src", "assets")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.BrandPrefix != "Adafruit" {
		t.Errorf("BrandPrefix = %q, want %q", cfg.BrandPrefix, "Adafruit")
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Output != DefaultConfig().Output {
		t.Errorf("Output = %q, want default", cfg.Output)
	}
}

func TestLoadWithRepo_InvalidRepoConfig(t *testing.T) {
	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, RepoDirName), `{"format": "csv"}`)

	if _, err := LoadWithRepo(t.TempDir(), repoRoot); err == nil {
		t.Fatal("LoadWithRepo() expected error, got nil")
	}
}

func TestFindRepoConfig(t *testing.T) {
	if got := FindRepoConfig(""); got != "" {
		t.Errorf("FindRepoConfig(\"\") = %q, want empty", got)
	}

	root := t.TempDir()
	writeConfig(t, filepath.Join(root, RepoDirName), `{}`)
	want := filepath.Join(root, RepoDirName, "config.json")
	if got := FindRepoConfig(root); got != want {
		t.Errorf("FindRepoConfig() = %q, want %q", got, want)
	}
}

func TestMerge_MaxExamplesAndAll(t *testing.T) {
	on, off := true, false

	tests := []struct {
		name    string
		base    *bool
		overlay *bool
		want    bool
	}{
		{name: "unset", want: false},
		{name: "inherited from base", base: &on, want: true},
		{name: "set by overlay", overlay: &on, want: true},
		{name: "overlay turns off base", base: &on, overlay: &off, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(&Config{MaxExamples: 3, All: tt.base}, &Config{All: tt.overlay})
			if got.MaxExamples != 3 {
				t.Errorf("MaxExamples = %d, want 3", got.MaxExamples)
			}
			if got.IncludeAll() != tt.want {
				t.Errorf("IncludeAll() = %v, want %v", got.IncludeAll(), tt.want)
			}
		})
	}
}

func TestLoadWithRepo_RepoDisablesAll(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `{"all": true}`)

	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, RepoDirName), `{"all": false}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.IncludeAll() {
		t.Error("IncludeAll() = true, want false from repo config")
	}
}

func TestExtraWidths(t *testing.T) {
	cfg := &Config{ExtraPrefixes: map[string][]string{"32": {"CH32V"}, "64-bit": {"JH7110"}}}

	widths, err := cfg.ExtraWidths()
	if err != nil {
		t.Fatalf("ExtraWidths() error = %v", err)
	}
	if len(widths[32]) != 1 || widths[32][0] != "CH32V" {
		t.Errorf("widths[32] = %v", widths[32])
	}
	if len(widths[64]) != 1 || widths[64][0] != "JH7110" {
		t.Errorf("widths[64] = %v", widths[64])
	}
}

func TestClassifier(t *testing.T) {
	c, err := DefaultConfig().Classifier()
	if err != nil {
		t.Fatalf("Classifier() error = %v", err)
	}
	if c != boards.DefaultClassifier {
		t.Error("expected the default classifier when no extras are configured")
	}

	cfg := &Config{ExtraPrefixes: map[string][]string{"32": {"CH32V"}}, ExtraHarvard: []string{"CH32V"}}
	c, err = cfg.Classifier()
	if err != nil {
		t.Fatalf("Classifier() error = %v", err)
	}
	got := c.Classify("CH32V003")
	if !got.Known || got.Bits != 32 || !got.Harvard {
		t.Errorf("Classify(CH32V003) = %+v", got)
	}
}
