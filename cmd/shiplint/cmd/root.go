package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/shiplint/shiplint/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "shiplint",
		Usage:   "A linter for container build files and deployment charts",
		Version: version.Version(),
		Description: `shiplint checks container build scripts and deployment charts for
best practices, correctness issues, and common mistakes.

Examples:
  shiplint check Dockerfile
  shiplint check --format json Dockerfile Dockerfile.dev
  shiplint check --chart ./deploy/mychart`,
		Commands: []*cli.Command{
			checkCommand(),
			rulesCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
