package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hpungsan/boardgen/internal/boards"
)

// Output formats.
const (
	FormatBits   = "bits"
	FormatLegacy = "legacy"
)

// RepoDirName is the per-repository configuration directory.
const RepoDirName = ".boardgen"

// Config holds application configuration.
type Config struct {
	// Output is the path of the generated board table.
	Output string `json:"output,omitempty"`

	// Format selects the output schema: "bits" (name/ram/bits/progmem) or
	// "legacy" (label/ram/memoryModel/progmem).
	Format string `json:"format,omitempty"`

	// BrandPrefix keeps only boards whose normalized name starts with it.
	BrandPrefix string `json:"brand_prefix,omitempty"`

	// All disables the brand filter. Nil means unset, so a repo config can
	// turn off an "all": true inherited from the global config.
	All *bool `json:"all,omitempty"`

	// Source names the board registry: pio, manifests, fixture or sqlite.
	Source string `json:"source,omitempty"`

	// Location is the platforms directory, fixture file or catalog path
	// for sources other than pio.
	Location string `json:"location,omitempty"`

	// PIOCommand is the PlatformIO CLI command line, e.g. "python3 -m platformio".
	PIOCommand string `json:"pio_command,omitempty"`

	// MaxExamples is how many board names each unknown-MCU warning lists.
	MaxExamples int `json:"max_examples,omitempty"`

	// ExtraPrefixes adds MCU prefixes per word width, keyed by bit count
	// ("8", "16", "32", "64"). They are checked after the built-in prefixes.
	ExtraPrefixes map[string][]string `json:"extra_prefixes,omitempty"`

	// ExtraHarvard adds prefixes of MCUs with separate program memory.
	ExtraHarvard []string `json:"extra_harvard,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:      "src/assets/boards.json",
		Format:      FormatBits,
		BrandPrefix: "Arduino",
		Source:      "pio",
		MaxExamples: 3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both the global directory and the
// nearest .boardgen/config.json found walking upward from startDir.
// Repo config takes precedence for scalar values; lists are merged
// (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .boardgen/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, RepoDirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; lists are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Output:      pick(overlay.Output, base.Output),
		Format:      pick(overlay.Format, base.Format),
		BrandPrefix: pick(overlay.BrandPrefix, base.BrandPrefix),
		Source:      pick(overlay.Source, base.Source),
		Location:    pick(overlay.Location, base.Location),
		PIOCommand:  pick(overlay.PIOCommand, base.PIOCommand),
	}

	result.MaxExamples = overlay.MaxExamples
	if result.MaxExamples == 0 {
		result.MaxExamples = base.MaxExamples
	}

	result.All = base.All
	if overlay.All != nil {
		result.All = overlay.All
	}

	result.ExtraHarvard = mergeStringSlice(base.ExtraHarvard, overlay.ExtraHarvard)

	keys := make(map[string]bool)
	for k := range base.ExtraPrefixes {
		keys[k] = true
	}
	for k := range overlay.ExtraPrefixes {
		keys[k] = true
	}
	for k := range keys {
		merged := mergeStringSlice(base.ExtraPrefixes[k], overlay.ExtraPrefixes[k])
		if merged == nil {
			continue
		}
		if result.ExtraPrefixes == nil {
			result.ExtraPrefixes = make(map[string][]string)
		}
		result.ExtraPrefixes[k] = merged
	}

	return result
}

func pick(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// IncludeAll reports whether the brand filter is disabled.
func (c *Config) IncludeAll() bool {
	return c.All != nil && *c.All
}

// Validate checks enumerated fields and extra prefix keys.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatBits, FormatLegacy:
	default:
		return fmt.Errorf("invalid format %q (want %q or %q)", c.Format, FormatBits, FormatLegacy)
	}
	if c.MaxExamples < 0 {
		return fmt.Errorf("max_examples must be non-negative")
	}
	_, err := c.ExtraWidths()
	return err
}

// ExtraWidths returns ExtraPrefixes keyed by bit count.
func (c *Config) ExtraWidths() (map[int][]string, error) {
	if len(c.ExtraPrefixes) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(c.ExtraPrefixes))
	for k := range c.ExtraPrefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	widths := make(map[int][]string, len(keys))
	for _, k := range keys {
		bits, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(k), "-bit"))
		if err != nil {
			return nil, fmt.Errorf("invalid extra_prefixes key %q: want a bit count such as \"32\"", k)
		}
		if !boards.IsSupportedWidth(bits) {
			return nil, fmt.Errorf("invalid extra_prefixes key %q: unsupported width %d", k, bits)
		}
		widths[bits] = append(widths[bits], c.ExtraPrefixes[k]...)
	}
	return widths, nil
}

// Classifier returns a classifier over the built-in prefix tables extended
// with ExtraPrefixes and ExtraHarvard.
func (c *Config) Classifier() (*boards.Classifier, error) {
	widths, err := c.ExtraWidths()
	if err != nil {
		return nil, err
	}
	if widths == nil && len(c.ExtraHarvard) == 0 {
		return boards.DefaultClassifier, nil
	}
	return boards.NewClassifier(widths, c.ExtraHarvard), nil
}
