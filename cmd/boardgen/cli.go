package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/hpungsan/boardgen/internal/boards"
	"github.com/hpungsan/boardgen/internal/config"
	"github.com/hpungsan/boardgen/internal/errors"
	"github.com/hpungsan/boardgen/internal/mcp"
	"github.com/hpungsan/boardgen/internal/output"
	"github.com/hpungsan/boardgen/internal/registry"
	"github.com/hpungsan/boardgen/internal/report"
)

// defaultConfigDir returns the global config directory under homeDir.
func defaultConfigDir(homeDir string) string {
	return filepath.Join(homeDir, config.RepoDirName)
}

// newCLIApp creates the CLI application. Running it without a subcommand
// regenerates the board table.
func newCLIApp(configDir string) *cli.App {
	app := &cli.App{
		Name:    "boardgen",
		Usage:   "Generate the board lookup table from the PlatformIO registry",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default src/assets/boards.json)"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include boards outside the brand prefix"},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Registry source: " + strings.Join(registry.Sources(), "|")},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Platforms directory, fixture file or catalog for non-pio sources"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: bits|legacy"},
			&cli.StringFlag{Name: "brand", Usage: "Brand prefix kept unless --all is given (default Arduino)"},
			&cli.StringFlag{Name: "report", Usage: "Write a run report (.html for HTML, Markdown otherwise)"},
			&cli.StringFlag{Name: "config", Value: configDir, Usage: "Global config directory"},
			&cli.IntFlag{Name: "verbosity", Usage: "Log verbosity (klog -v level)"},
		},
		Before: func(c *cli.Context) error {
			if !c.IsSet("verbosity") {
				return nil
			}
			return setVerbosity(c.Int("verbosity"))
		},
		Action: generate,
		Commands: []*cli.Command{
			classifyCmd(),
			normalizeCmd(),
			serveCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generate lists the registry, builds the table, writes it and prints the
// unknown MCU annotations.
func generate(c *cli.Context) error {
	if c.NArg() > 0 {
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown command %q", c.Args().First())))
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return outputError(err)
	}
	classifier, err := cfg.Classifier()
	if err != nil {
		return outputError(errors.NewInvalidRequest(err.Error()))
	}
	reg, err := openRegistry(cfg)
	if err != nil {
		return outputError(err)
	}

	runID := report.NewRunID()
	ctx := klog.NewContext(c.Context, klog.FromContext(c.Context).WithValues("run", runID))
	log := klog.FromContext(ctx)

	records, err := reg.ListBoards(ctx)
	if err != nil {
		return outputError(err)
	}
	log.Info("listed boards", "source", cfg.Source, "count", len(records))

	res := boards.Build(ctx, records, classifier)
	entries := res.Filter(cfg.BrandPrefix, cfg.IncludeAll())

	if err := output.WriteJSON(ctx, cfg.Output, entries, cfg.Format); err != nil {
		return outputError(err)
	}

	warnings := res.Unknown.Warnings(cfg.MaxExamples)
	if err := output.PrintWarnings(c.App.Writer, warnings); err != nil {
		return outputError(errors.NewInternal(err))
	}

	if path := c.String("report"); path != "" {
		summary := report.NewSummary(runID, cfg.Source, cfg.Output, len(records), res, entries, cfg.MaxExamples)
		if err := summary.Write(path); err != nil {
			return outputError(errors.NewInternal(err))
		}
		log.Info("wrote report", "path", path)
	}
	return nil
}

// classifyCmd creates the classify command.
func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify MCU model strings by word width and memory architecture",
		ArgsUsage: "<mcu>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one mcu is required"))
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return outputError(err)
			}
			classifier, err := cfg.Classifier()
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			results := make([]mcp.ClassifyResponse, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				mcu := strings.TrimSpace(arg)
				k := classifier.Classify(mcu)
				results = append(results, mcp.ClassifyResponse{
					MCU:         mcu,
					Known:       k.Known,
					Bits:        k.Bits,
					MemoryModel: k.MemoryModel(),
					Progmem:     k.Harvard,
				})
			}
			return outputJSON(c.App.Writer, results)
		},
	}
}

// normalizeCmd creates the normalize command.
func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Strip port, bootloader and clock qualifiers from board names",
		ArgsUsage: "<name>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one name is required"))
			}
			results := make([]mcp.NormalizeResponse, 0, c.NArg())
			for _, name := range c.Args().Slice() {
				results = append(results, mcp.NormalizeResponse{
					Name:       name,
					Normalized: boards.NormalizeName(name),
				})
			}
			return outputJSON(c.App.Writer, results)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return outputError(err)
			}
			reg, err := openRegistry(cfg)
			if err != nil {
				return outputError(err)
			}
			if err := mcp.Run(reg, cfg, Version); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// loadConfig merges the global and repo configs and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	cfg, err := config.LoadWithRepo(c.String("config"), cwd)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("config: %v", err))
	}

	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("all") {
		all := c.Bool("all")
		cfg.All = &all
	}
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("location") {
		cfg.Location = c.String("location")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("brand") {
		cfg.BrandPrefix = c.String("brand")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if cfg.Output == "" {
		return nil, errors.NewInvalidRequest("output path is required")
	}
	return cfg, nil
}

// openRegistry opens the registry named by the config.
func openRegistry(cfg *config.Config) (registry.Registry, error) {
	return registry.Open(cfg.Source, registry.Options{
		Location:   cfg.Location,
		PIOCommand: cfg.PIOCommand,
	})
}

// setVerbosity sets the klog -v level.
func setVerbosity(level int) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	return fs.Set("v", strconv.Itoa(level))
}

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := err.(*errors.BoardError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
