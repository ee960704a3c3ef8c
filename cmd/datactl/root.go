package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iconsports/demandscope/engine/store"
	"github.com/iconsports/demandscope/pkg/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand.
type cli struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "datactl",
		Short:         "datactl reads stored demand runs and runs collections.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		// Bare `datactl` lists runs.
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.list(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("DEMANDSCOPE_CONFIG"), "path to YAML config file")
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "override the run storage directory")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.listCmd(),
		c.latestCmd(),
		c.filesCmd(),
		c.planCmd(),
		c.collectCmd(),
		c.watchCmd(),
		c.importCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.Storage.DataDir = c.dataDir
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	return nil
}

// openStore returns the run store, failing when its directory is missing.
func (c *cli) openStore() (*store.FileStore, error) {
	dir := c.cfg.Storage.DataDir
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("data directory not found: %s", dir)
	}
	return store.NewFileStore(dir, c.logger), nil
}

func (c *cli) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(c.out)
	return t
}
