package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/scoring"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all stored results, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.list(cmd)
		},
	}
}

func (c *cli) list(cmd *cobra.Command) error {
	s, err := c.openStore()
	if err != nil {
		return err
	}
	runs, err := s.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No results found. Run an API test first.")
		return nil
	}

	t := c.newTable()
	t.AppendHeader(table.Row{"ID", "Type", "Source", "Timestamp", "Players", "Markets", "Keywords", "Cost", "Failures"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.TestType,
			r.Source,
			r.Timestamp.UTC().Format(time.RFC3339),
			len(r.Metadata.Entities),
			len(r.Metadata.Markets),
			r.Metadata.KeywordCount,
			fmt.Sprintf("$%.2f", r.Metadata.ActualCost),
			len(r.Metadata.Failures),
		})
	}
	t.Render()
	fmt.Fprintf(c.out, "\nData directory: %s\nTotal results: %d\n", s.Dir(), len(runs))
	return nil
}

func (c *cli) latestCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:     "latest",
		Aliases: []string{"last"},
		Short:   "Show the latest result with its top players",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			run, err := s.Latest(cmd.Context())
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(c.out, "No results found.")
				return nil
			}
			c.printRun(run, top)
			fmt.Fprintf(c.out, "\nFile: %s\n", s.Path(run.ID))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of ranked players to show")
	return cmd
}

func (c *cli) printRun(run *domain.Run, top int) {
	md := run.Metadata
	fmt.Fprintf(c.out, "ID:        %s\n", run.ID)
	fmt.Fprintf(c.out, "Test type: %s\n", run.TestType)
	fmt.Fprintf(c.out, "Source:    %s (%s)\n", run.Source, md.APIMode)
	fmt.Fprintf(c.out, "Timestamp: %s\n", run.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(c.out, "Players:   %d (%s)\n", len(md.Entities), preview(md.Entities, 3))
	fmt.Fprintf(c.out, "Markets:   %s\n", strings.Join(md.Markets, ", "))
	fmt.Fprintf(c.out, "Keywords:  %d\n", md.KeywordCount)
	fmt.Fprintf(c.out, "Cost:      $%.2f (estimated $%.2f)\n", md.ActualCost, md.EstimatedCost)
	if md.DateRange != nil {
		fmt.Fprintf(c.out, "Dates:     %s to %s\n", md.DateRange.From, md.DateRange.To)
	}
	if len(md.Failures) > 0 {
		fmt.Fprintf(c.out, "Failures:  %d batches\n", len(md.Failures))
	}

	profiles := make([]domain.EntityProfile, len(run.ProcessedResults.Profiles))
	copy(profiles, run.ProcessedResults.Profiles)
	if len(profiles) == 0 || top <= 0 {
		return
	}
	scoring.Rank(profiles)
	if len(profiles) > top {
		profiles = profiles[:top]
	}

	fmt.Fprintln(c.out)
	t := c.newTable()
	t.AppendHeader(table.Row{"#", "Player", "Score", "Volume", "Player Vol", "Merch Vol", "Trend %", "Markets", "Primary"})
	for i, p := range profiles {
		t.AppendRow(table.Row{
			i + 1, p.Name, p.OpportunityScore, p.TotalVolume, p.EntityVolume, p.MerchVolume,
			fmt.Sprintf("%.1f", p.TrendPercent), p.MarketCount, p.PrimaryMarket,
		})
	}
	t.Render()
}

func preview(names []string, n int) string {
	if len(names) <= n {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:n], ", ") + ", ..."
}

func (c *cli) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "files",
		Aliases: []string{"all"},
		Short:   "Show every file in the data directory",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.openStore()
			if err != nil {
				return err
			}
			files, err := s.Files(cmd.Context())
			if err != nil {
				return err
			}

			var total int64
			t := c.newTable()
			t.AppendHeader(table.Row{"File", "Type", "Size", "Modified"})
			for _, f := range files {
				total += f.Size
				t.AppendRow(table.Row{f.Name, f.Kind, kb(f.Size), f.Modified.Format(time.DateOnly)})
			}
			t.Render()
			fmt.Fprintf(c.out, "\nDirectory: %s\nTotal size: %s\n", s.Dir(), kb(total))
			return nil
		},
	}
}

func kb(n int64) string {
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
