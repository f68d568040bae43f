package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"feedln/internal/config"
	"feedln/internal/feedlist"
	"feedln/internal/feedsync"
	"feedln/internal/logging"
	"feedln/internal/opml"
	"feedln/internal/speech"
	"feedln/internal/storage"
	"feedln/internal/tui"
)

var cli struct {
	Run     runCmd     `cmd:"" default:"1" help:"Open the reader."`
	Convert convertCmd `cmd:"" help:"Convert an OPML file into feed list CSV rows."`
}

type runCmd struct {
	File  string `short:"f" type:"path" default:"feedln.csv" help:"Feed list CSV file. The database, settings and log live next to it."`
	Fetch bool   `help:"Fetch all feeds right after start."`
}

func (c *runCmd) Run() error {
	paths := config.Derive(c.File)

	logger, closer, err := logging.Open(paths.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	cfg, err := config.Load(paths.Settings)
	if err != nil {
		return err
	}

	if err := feedlist.EnsureFile(paths.FeedFile); err != nil {
		return err
	}
	entries, err := feedlist.Load(paths.FeedFile, logger)
	if err != nil {
		return err
	}

	store, err := storage.New(paths.Database, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := feedlist.Import(ctx, store, entries); err != nil {
		cancel()
		return fmt.Errorf("import feed list: %w", err)
	}
	cancel()

	syncer := feedsync.New(store, cfg.Timeout, logger)
	speaker := speech.New(cfg.Speech, logger)

	logger.WithField("feeds", len(entries)).Info("starting")
	model := tui.New(store, syncer, cfg, paths, speaker, logger, c.Fetch)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

type convertCmd struct {
	OPML string `arg:"" type:"existingfile" help:"OPML file to read."`
	Out  string `short:"o" type:"path" help:"Write the CSV here instead of stdout."`
}

func (c *convertCmd) Run() error {
	f, err := os.Open(c.OPML)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := opml.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.OPML, err)
	}

	out := os.Stdout
	if c.Out != "" {
		out, err = os.Create(c.Out)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"Name", "URL", "Category", "Tags"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Name, e.URL, e.Category, ""}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("feedln"),
		kong.Description("A keyboard-driven terminal feed reader."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
