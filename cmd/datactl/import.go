package main

import (
	"context"
	"fmt"
	"os"

	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/ingest"
	"github.com/iconsports/demandscope/engine/pipeline"
	"github.com/spf13/cobra"
)

func (c *cli) importCmd() *cobra.Command {
	var market string
	cmd := &cobra.Command{
		Use:   "import <report.csv>...",
		Short: "Score keyword research CSV exports and store them as a run",
		Long: "Reads SEMrush-style keyword exports (Keyword, Avg. monthly searches, " +
			"Competition, YoY change, Country), matches keywords to players and saves " +
			"the scored result. The provider is never called.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fallback, ok := catalog.FindMarket(market)
			if !ok {
				return fmt.Errorf("unknown market %q", market)
			}

			var rows []ingest.Row
			for _, path := range args {
				r, err := readReport(path)
				if err != nil {
					return err
				}
				rows = append(rows, r...)
			}

			ctx := cmd.Context()
			app, err := c.build(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(ctx))

			report, err := app.Service.ImportReport(ctx, rows, fallback)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Files: %d  Rows: %d\n\n", len(args), len(rows))
			c.printRun(report.Run, pipeline.TopProfilesCount)
			if report.SaveErr != nil {
				return fmt.Errorf("report imported but was not saved: %w", report.SaveErr)
			}
			fmt.Fprintf(c.out, "\nSaved: %s\n", report.FilePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&market, "market", "United States", "market for rows without a Country")
	return cmd
}

func readReport(path string) ([]ingest.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
