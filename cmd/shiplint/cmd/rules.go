package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/shiplint/shiplint/internal/rules"
	_ "github.com/shiplint/shiplint/internal/rules/all"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List all registered rules",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the rule list as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			catalogue := rules.Default()

			if cmd.Bool("json") {
				metas := make([]rules.RuleMetadata, 0, catalogue.Len())
				for _, rule := range catalogue.All() {
					metas = append(metas, rule.Metadata())
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(metas)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tSEVERITY\tCATEGORY\tNAME")
			for _, rule := range catalogue.All() {
				md := rule.Metadata()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					md.Code, md.DefaultSeverity, md.Category, md.Name)
			}
			return w.Flush()
		},
	}
}
