package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/iconsports/demandscope/engine/bootstrap"
	"github.com/iconsports/demandscope/engine/costguard"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/pipeline"
	"github.com/iconsports/demandscope/pkg/dataforseo"
	"github.com/iconsports/demandscope/pkg/metrics"
	"github.com/iconsports/demandscope/pkg/natsutil"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// build wires the pipeline. offline drops the optional integrations so
// planning never dials Redis, NATS or Neo4j.
func (c *cli) build(ctx context.Context, offline bool) (*bootstrap.App, error) {
	cfg := *c.cfg
	if offline {
		cfg.Redis.URL = ""
		cfg.NATS.URL = ""
		cfg.Neo4j.URL = ""
	}
	return bootstrap.Build(ctx, &cfg, "datactl", c.logger, metrics.New())
}

func (c *cli) planCmd() *cobra.Command {
	var micro bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the batches and cost of a run without calling the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.build(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))

			svc := app.Service
			req := svc.FullRequest(domain.TestTypeFullProduction, "", "")
			if micro {
				req = svc.MicroTestRequest("", "")
			}
			summary, batches, err := svc.Plan(req)
			if err != nil {
				return err
			}

			t := c.newTable()
			t.AppendHeader(table.Row{"Players", "Terms", "Markets", "Keywords", "Requests/Market", "Requests", "Estimated Cost"})
			t.AppendRow(table.Row{
				summary.TotalEntities, summary.TotalTerms, summary.TotalMarkets, summary.TotalKeywords,
				summary.RequestsPerMarket, summary.TotalRequests, fmt.Sprintf("$%.2f", summary.EstimatedCost),
			})
			t.Render()

			fmt.Fprintf(c.out, "\nAPI mode: %s\nBatches:  %d\n", svc.APIMode(), len(batches))
			guard := costguard.Config{AllowRealMoney: c.cfg.Cost.AllowRealMoney, MaxAllowedCost: c.cfg.Cost.MaxAllowedCost}
			if err := costguard.Authorize(summary.EstimatedCost, guard, svc.APIMode() == dataforseo.ModeLive); err != nil {
				fmt.Fprintf(c.out, "Guard:    blocked (%v)\n", err)
			} else {
				fmt.Fprintf(c.out, "Guard:    allowed (limit $%.2f)\n", guard.MaxAllowedCost)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&micro, "micro", false, "plan the micro test instead of the full run")
	return cmd
}

func (c *cli) collectCmd() *cobra.Command {
	var (
		micro    bool
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a collection against DataForSEO and store the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := c.build(ctx, false)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(ctx))

			run := app.Service.CollectAllData
			if micro {
				run = app.Service.RunMicroTest
			}
			report, err := run(ctx, from, to)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Requests: %d succeeded of %d\n\n", report.Succeeded, report.Requests)
			c.printRun(report.Run, pipeline.TopProfilesCount)
			if report.SaveErr != nil {
				return fmt.Errorf("run completed but was not saved: %w", report.SaveErr)
			}
			fmt.Fprintf(c.out, "\nSaved: %s\n", report.FilePath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&micro, "micro", false, "run the micro test instead of the full collection")
	cmd.Flags().StringVar(&from, "from", "", "history start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "history end date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print run completion events from NATS until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.NATS.URL == "" {
				return errors.New("nats url not configured (set NATS_URL)")
			}
			nc, err := natsutil.Connect(c.cfg.NATS.URL, "datactl-watch", c.logger)
			if err != nil {
				return err
			}
			defer nc.Close()

			events := make(chan pipeline.RunCompleted, 16)
			sub, err := natsutil.Subscribe(nc, pipeline.EventSubject, func(_ context.Context, ev pipeline.RunCompleted) {
				events <- ev
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()
			if err := nc.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Watching %s on %s\n", pipeline.EventSubject, c.cfg.NATS.URL)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev := <-events:
					c.printEvent(ev)
				}
			}
		},
	}
}

func (c *cli) printEvent(ev pipeline.RunCompleted) {
	leader := "-"
	if len(ev.TopProfiles) > 0 {
		p := ev.TopProfiles[0]
		leader = fmt.Sprintf("%s (%d)", p.Name, p.OpportunityScore)
	}
	fmt.Fprintf(c.out, "%s  %-16s players=%d markets=%d keywords=%d cost=$%.2f failures=%d top=%s\n",
		ev.Timestamp.UTC().Format("2006-01-02 15:04:05"), ev.TestType,
		len(ev.Entities), len(ev.Markets), ev.KeywordCount, ev.ActualCost, ev.Failures, leader)
}
