// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"

	"github.com/mkoistinen/filamentcolors"
	"github.com/mkoistinen/filamentcolors/api"
	"github.com/mkoistinen/filamentcolors/catalogsync"
	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/config"
	"github.com/mkoistinen/filamentcolors/match"
	"github.com/mkoistinen/filamentcolors/report"
	"github.com/mkoistinen/filamentcolors/storage"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "filamentcolors",
		Usage: "Find the filament swatches closest to a color",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "More detailed logging to the console (same as --log-level debug)",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a TOML or YAML configuration file",
				EnvVars: []string{config.EnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the local catalog store",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Catalog store driver (badger, sqlite)",
			},
			&cli.StringFlag{
				Name:  "origin",
				Usage: "Catalog service origin",
			},
			&cli.BoolFlag{
				Name:  "update-swatches",
				Usage: "Load color swatches from the catalog service (same as the update command)",
			},
		}, matchFlags(false)...),
		Before: setupLogger,
		Action: legacyCommand,
		Commands: []*cli.Command{
			{
				Name:   "update",
				Usage:  "Synchronize the local catalog with the catalog service",
				Action: updateCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Drop and recreate the local catalog before storing the first page",
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Continue an interrupted synchronization after its last stored page",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Do not print a progress line",
					},
				},
			},
			{
				Name:   "match",
				Usage:  "Find the swatches closest to a color",
				Action: matchCommand,
				Flags:  matchFlags(true),
			},
			{
				Name:   "serve",
				Usage:  "Serve match queries over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to server.addr from the configuration)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show the local catalog and the last synchronization",
				Action: statusCommand,
			},
		},
	}
}

func matchFlags(colorRequired bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "color",
			Aliases:  []string{"c"},
			Usage:    "Color in hexadecimal, with or without a leading #",
			Required: colorRequired,
		},
		&cli.StringFlag{
			Name:    "method",
			Aliases: []string{"m"},
			Usage:   "Distance metric: hue (default), absolute (hue and lightness) or ciede2000",
			Value:   string(colorspace.DefaultMetric),
		},
		&cli.StringSliceFlag{
			Name:    "exclude",
			Aliases: []string{"x"},
			Usage:   "Swatch IDs to exclude from results (repeatable or comma separated)",
		},
		&cli.IntFlag{
			Name:    "top-n",
			Aliases: []string{"t", "top_n"},
			Usage:   "Number of closest swatches to display",
			Value:   1,
		},
	}
}

// legacyCommand keeps the flag-only invocation working:
// exactly one of --update-swatches and --color selects what to do.
func legacyCommand(c *cli.Context) error {
	update := c.Bool("update-swatches")
	color := c.String("color") != ""
	switch {
	case update && !color:
		return runUpdate(c, false, false, true)
	case color && !update:
		return matchCommand(c)
	default:
		return cli.ShowAppHelp(c)
	}
}

// loadConfig reads the configuration file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("store") {
		driver := strings.ToLower(c.String("store"))
		if !c.IsSet("db") {
			oldDefault, _ := homedir.Expand(config.DefaultStorePath(cfg.Store.Driver))
			if cfg.Store.Path == oldDefault {
				cfg.Store.Path = config.DefaultStorePath(driver)
			}
		}
		cfg.Store.Driver = driver
	}
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if c.IsSet("origin") {
		cfg.Service.Origin = c.String("origin")
	}

	if err := cfg.Expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context, opts ...filamentcolors.DatabaseOption) (*filamentcolors.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts = append([]filamentcolors.DatabaseOption{filamentcolors.WithConfig(cfg)}, opts...)
	db, err := filamentcolors.OpenDatabase(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog store: %w", err)
	}
	return db, nil
}

func updateCommand(c *cli.Context) error {
	return runUpdate(c, c.Bool("rebuild"), c.Bool("resume"), !c.Bool("no-progress"))
}

func runUpdate(c *cli.Context, rebuild, resume, progress bool) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	syncConfig := db.SyncConfig()
	syncConfig.Resume = resume

	opts := []catalogsync.Option{catalogsync.WithConfig(syncConfig)}
	if progress {
		opts = append(opts, catalogsync.WithProgress(c.App.ErrWriter))
	}

	sync, err := db.NewSynchronizer(nil, opts...)
	if err != nil {
		return err
	}
	defer sync.Release()

	slog.Info("synchronizing catalog",
		"origin", db.Config().Service.Origin,
		"store", db.Config().Store.Path,
		"rebuild", rebuild,
		"resume", resume)

	result, err := sync.Sync(ctx, rebuild)
	if err != nil {
		return fmt.Errorf("catalog update failed: %w", err)
	}

	return report.NewRenderer(db.Config().Service.Origin).Synced(c.App.Writer, report.SyncSummary{
		Pages:   result.Pages,
		Created: result.Created,
		Updated: result.Updated,
		Rebuilt: result.Rebuilt,
		Total:   result.Total,
	})
}

func matchCommand(c *cli.Context) error {
	color := c.String("color")
	// Reject bad input before touching the store or printing anything.
	if _, _, _, err := colorspace.ParseHex(color); err != nil {
		return fmt.Errorf("%w: %w", match.ErrInvalidInput, err)
	}
	excluded, err := match.ParseIDs(c.StringSlice("exclude")...)
	if err != nil {
		return err
	}
	topN := c.Int("top-n")
	if topN < 1 {
		return fmt.Errorf("%w: --top-n must be at least 1, got %d", match.ErrInvalidInput, topN)
	}
	metric, err := colorspace.ParseMetric(c.String("method"))
	if err != nil {
		return fmt.Errorf("%w: %w", match.ErrInvalidInput, err)
	}

	out := c.App.Writer
	db, err := openDatabase(c, filamentcolors.WithExistingStore())
	if errors.Is(err, storage.ErrStoreNotFound) {
		return report.NewRenderer("").NoCatalog(out)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	renderer := report.NewRenderer(db.Config().Service.Origin)

	matcher, err := db.NewMatcher(c.Context)
	if errors.Is(err, match.ErrNoCatalog) {
		return renderer.NoCatalog(out)
	}
	if err != nil {
		return err
	}

	if matcher.Size() > 0 {
		if err := renderer.CatalogSize(out, matcher.Size()); err != nil {
			return err
		}
	}

	matches, err := matcher.Find(color,
		match.WithTopN(topN), match.WithExcluded(excluded...), match.WithMetric(metric))
	switch {
	case errors.Is(err, match.ErrEmptyCatalog):
		return renderer.EmptyCatalog(out)
	case errors.Is(err, match.ErrNoMatches):
		return renderer.NoMatches(out)
	case err != nil:
		return err
	}
	return renderer.Matches(out, color, metric, topN, matches)
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(c, filamentcolors.WithExistingStore())
	if errors.Is(err, storage.ErrStoreNotFound) {
		return fmt.Errorf("%w: run the update command first", match.ErrNoCatalog)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	matcher, err := db.NewMatcher(ctx)
	if errors.Is(err, match.ErrNoCatalog) {
		return fmt.Errorf("%w: run the update command first", err)
	}
	if err != nil {
		return err
	}

	srv, err := api.NewServer(matcher, db.Config().Service.Origin)
	if err != nil {
		return err
	}

	addr := db.Config().Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving match queries", "addr", addr, "swatches", matcher.Size())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func statusCommand(c *cli.Context) error {
	db, err := openDatabase(c, filamentcolors.WithExistingStore())
	if errors.Is(err, storage.ErrStoreNotFound) {
		return report.NewRenderer("").NoCatalog(c.App.Writer)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := db.Status(c.Context)
	if err != nil {
		return err
	}
	return report.NewRenderer(db.Config().Service.Origin).Status(c.App.Writer, *status)
}

// setupLogger configures the default slog logger from --log-level and --verbose.
func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	if c.Bool("verbose") {
		levelStr = "debug"
	}

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
