package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/shiplint/shiplint/internal/config"
	"github.com/shiplint/shiplint/internal/lint"
	"github.com/shiplint/shiplint/internal/rules"
	_ "github.com/shiplint/shiplint/internal/rules/all"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check build files or charts for issues",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "chart",
				Usage: "Lint a chart directory instead of build files",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a configuration file",
			},
			&cli.StringFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum severity that fails the run: error, warning, info, style",
			},
			&cli.BoolFlag{
				Name:  "no-fail",
				Usage: "Always exit zero regardless of findings",
			},
			&cli.BoolFlag{
				Name:  "fixable-only",
				Usage: "Report only findings with an automatic fix",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			chartDir := cmd.String("chart")
			if len(files) == 0 && chartDir == "" {
				files = []string{"Dockerfile"}
			}

			cfg, err := loadConfig(cmd, files, chartDir)
			if err != nil {
				return err
			}

			linter := lint.New(rules.Default(), cfg)

			var result *lint.Result
			if chartDir != "" {
				result = linter.LintChart(chartDir)
			} else {
				result = linter.LintFiles(files)
			}

			if err := printResult(result, cmd.String("format"), cfg); err != nil {
				return err
			}
			if result.ShouldFail(cfg) {
				os.Exit(1)
			}
			return nil
		},
	}
}

// loadConfig resolves configuration: an explicit --config path wins,
// otherwise the cascade starts from the first lint target. Flags override
// whatever the cascade produced.
func loadConfig(cmd *cli.Command, files []string, chartDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case cmd.String("config") != "":
		cfg, err = config.LoadFile(cmd.String("config"))
	case chartDir != "":
		cfg, err = config.Load(chartDir)
	case len(files) > 0:
		cfg, err = config.Load(filepath.Dir(files[0]))
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if cmd.String("threshold") != "" {
		cfg.Threshold = cmd.String("threshold")
	}
	if cmd.Bool("no-fail") {
		cfg.NoFail = true
	}
	if cmd.Bool("fixable-only") {
		cfg.FixableOnly = true
	}
	if cmd.Bool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}

func printResult(result *lint.Result, format string, cfg *config.Config) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		if cfg.Quiet {
			return nil
		}
		for _, perr := range result.ParseErrors {
			fmt.Fprintln(os.Stderr, "parse error:", perr)
		}
		for _, failure := range result.Failures {
			fmt.Printf("%s:%d %s %s: %s\n",
				failure.File, failure.Line, colorSeverity(failure.Severity, cfg.NoColor),
				failure.Code, failure.Message)
		}
		return nil
	}
}

var severityColors = map[rules.Severity]string{
	rules.SeverityError:   "\x1b[31m", // red
	rules.SeverityWarning: "\x1b[33m", // yellow
	rules.SeverityInfo:    "\x1b[36m", // cyan
	rules.SeverityStyle:   "\x1b[90m", // gray
}

func colorSeverity(s rules.Severity, noColor bool) string {
	code, ok := severityColors[s]
	if noColor || !ok {
		return s.String()
	}
	return code + s.String() + "\x1b[0m"
}
