package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/surprisetalk/gridsheet/internal/config"
	"github.com/surprisetalk/gridsheet/internal/dataset"
	"github.com/surprisetalk/gridsheet/internal/logging"
	"github.com/surprisetalk/gridsheet/internal/tui"
)

func main() {
	cmd := &cli.Command{
		Name:  "gridsheet",
		Usage: "interactive grid editor over automerge table documents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config file path"},
			&cli.StringFlag{Name: "data", Value: "data/gridsheet", Usage: "document data directory"},
			&cli.StringFlag{Name: "url", Usage: "open a JSON dataset from a URL instead of the library"},
			&cli.BoolFlag{Name: "demo", Usage: "create a small demo table in the data directory first"},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "run a SQL query and browse the result (@table:<id> loads a document)",
				ArgsUsage: "<sql>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "config file path"},
					&cli.StringFlag{Name: "data", Value: "data/gridsheet", Usage: "document data directory"},
				},
				Action: runQuery,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (config.Config, *slog.Logger, io.Closer, error) {
	path := cmd.String("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, nil, nil, err
	}
	log, closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, log, closer, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	var m tui.Model
	if url := cmd.String("url"); url != "" {
		ds, err := dataset.FetchHTTP(ctx, url)
		if err != nil {
			return err
		}
		m = tui.NewFromDataset(cfg, log, url, ds, nil)
	} else {
		dataDir := cmd.String("data")
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		if cmd.Bool("demo") {
			if _, err := dataset.CreateDemoTable(dataDir); err != nil {
				return err
			}
		}
		m = tui.NewLibrary(cfg, log, dataDir)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: gridsheet query <sql>")
	}
	cfg, log, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ds, err := dataset.ExecuteQuery(cmd.Args().First(), cmd.String("data"))
	if err != nil {
		return err
	}
	m := tui.NewFromDataset(cfg, log, "query result", ds, nil)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
