// Command tview prints one page of a retail list view, or serves every view
// as JSON.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"
	"github.com/ZanzyTHEbar/retail-tableview/tview/catalog"
	"github.com/ZanzyTHEbar/retail-tableview/tview/config"
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/httpapi"
	"github.com/ZanzyTHEbar/retail-tableview/tview/ports"
	"github.com/ZanzyTHEbar/retail-tableview/tview/source"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"
	"github.com/ZanzyTHEbar/retail-tableview/tview/view"

	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"
)

type flags struct {
	configPath string
	viewName   string
	sourceKind string
	sqlQuery   string
	query      string
	sortKey    string
	sortDir    string
	page       int
	size       int
	jump       int
	serve      bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "",
		fmt.Sprintf("config file (default: config.yaml in ., .., etc/tview, or %s)", internal.DefaultConfigFile))
	flag.StringVar(&f.viewName, "view", "inventory", "catalog view to print")
	flag.StringVar(&f.sourceKind, "source", "http", "row source: http, sql or static")
	flag.StringVar(&f.sqlQuery, "sql", "", "query for -source sql (default: SELECT * FROM <view>)")
	flag.StringVar(&f.query, "q", "", "search term")
	flag.StringVar(&f.sortKey, "sort", "", "sort column id")
	flag.StringVar(&f.sortDir, "dir", "asc", "sort direction: asc or desc")
	flag.IntVar(&f.page, "page", 0, "zero-based page index")
	flag.IntVar(&f.size, "size", 0, "page size (default from config)")
	flag.IntVar(&f.jump, "jump", 0, "1-based page to jump to")
	flag.BoolVar(&f.serve, "serve", false, "serve the JSON API instead of printing")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	out := newConsole(os.Stdout, os.Stderr)

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		out.Error("Error loading configuration", err)
		os.Exit(1)
	}
	logger := internal.GetLoggerWithLevel(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f, cfg, logger, out); err != nil {
		out.Error("tview failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, cfg *config.Config, logger zerolog.Logger, out ports.Interactor) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	locale, err := cfg.LocaleTag()
	if err != nil {
		return err
	}

	names := []string{f.viewName}
	if f.serve {
		names = cat.Names()
	}

	var db *sql.DB
	if f.sourceKind == "sql" {
		db, err = source.Open(ctx, cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	targets := make([]source.Target, 0, len(names))
	for _, name := range names {
		if _, err := cat.View(name); err != nil {
			return err
		}
		src, err := newSource(f, cfg, db, name)
		if err != nil {
			return err
		}
		targets = append(targets, source.Target{Name: name, Source: src, Store: store.New(nil)})
	}
	if err := source.NewLoader(len(targets), logger).LoadAll(ctx, targets); err != nil {
		if !f.serve {
			return err
		}
		logger.Warn().Err(err).Msg("some views failed to load; serving what loaded")
	}

	if f.serve {
		return serve(ctx, cfg, cat, targets, logger, httpapi.Options{
			PageSize:        cfg.View.PageSize,
			PageSizeOptions: cfg.View.PageSizeOptions,
			Locale:          locale,
			Cache:           cfg.View.Cache,
		})
	}

	def, _ := cat.View(f.viewName)
	v, err := view.New(def.Name, def.Columns, targets[0].Store, view.Options{
		PageSize:        cfg.View.PageSize,
		PageSizeOptions: cfg.View.PageSizeOptions,
		Locale:          locale,
		Cache:           cfg.View.Cache,
		Logger:          &logger,
	})
	if err != nil {
		return err
	}
	if err := applyFlags(v, f, out); err != nil {
		return err
	}

	win, err := v.Render()
	if err != nil {
		return err
	}
	out.Table(def.Title, def.Columns, win)
	out.Output(fmt.Sprintf("%d of %d %s rows match", win.Total, targets[0].Store.Len(), def.Name))
	return nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path, nil)
	}
	return catalog.Default()
}

func newSource(f flags, cfg *config.Config, db *sql.DB, name string) (source.Source, error) {
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	switch f.sourceKind {
	case "http":
		if name == "items" {
			return source.NewItemsSource(cfg.API.BaseURL, cfg.API.Store, timeout), nil
		}
		return source.NewHTTPSource(cfg.API.BaseURL, "/"+name, cfg.API.Store, timeout), nil
	case "sql":
		query := f.sqlQuery
		if query == "" || f.serve {
			query = "SELECT * FROM " + name
		}
		return &source.SQLSource{DB: db, Query: query}, nil
	case "static":
		return source.StaticSource{Rows: sampleRows(name)}, nil
	default:
		return nil, fmt.Errorf("unknown source %q: want http, sql or static", f.sourceKind)
	}
}

// applyFlags replays the command line onto v in the order a user would
// work the screen: search, sort, page size, then page or jump.
func applyFlags(v *view.View, f flags, out ports.Interactor) error {
	v.SetQuery(f.query)
	if f.sortKey != "" {
		dir, err := engine.ParseDirection(f.sortDir)
		if err != nil {
			return err
		}
		if err := v.SetSort(engine.SortState{Key: f.sortKey, Direction: dir}); err != nil {
			return err
		}
	}
	if f.size != 0 {
		if err := v.SetPageSize(f.size); err != nil {
			return err
		}
	}
	if err := v.SetPage(f.page); err != nil {
		return err
	}
	if f.jump != 0 {
		var pe *engine.InvalidPageError
		if err := v.Jump(f.jump); errors.As(err, &pe) {
			out.Warning(fmt.Sprintf("Invalid page number %d: there are %d pages, staying on page %d",
				pe.Requested, pe.PageCount, v.State().PageIndex+1))
		} else if err != nil {
			return err
		}
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, targets []source.Target, logger zerolog.Logger, opts httpapi.Options) error {
	endpoints := make([]httpapi.Endpoint, 0, len(targets))
	for _, t := range targets {
		def, err := cat.View(t.Name)
		if err != nil {
			return err
		}
		endpoints = append(endpoints, httpapi.Endpoint{Name: def.Name, Title: def.Title, Columns: def.Columns, Store: t.Store})
	}
	api, err := httpapi.New(endpoints, opts, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Int("views", len(endpoints)).Msg("serving views")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
