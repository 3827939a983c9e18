package main

import (
	"errors"
	"io"

	"github.com/rs/zerolog"

	"biblebot/internal/audit"
	"biblebot/internal/commands"
	"biblebot/internal/config"
	"biblebot/internal/lang"
	"biblebot/internal/paging"
	"biblebot/internal/providers"
	"biblebot/internal/providers/biblegateway"
	"biblebot/internal/store"
)

// app is everything a command needs, wired from one configuration.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	catalog   *lang.Catalog
	store     *store.SQLiteStore
	audit     *audit.Logger
	paginator *paging.Paginator
	router    *commands.Router
}

type appOptions struct {
	searcher providers.Searcher
	noAudit  bool
}

func newApp(cfg config.Config, log zerolog.Logger, opts appOptions) (*app, error) {
	catalog, err := lang.Load()
	if err != nil {
		return nil, err
	}

	db, err := store.OpenSQLite(cfg.Store.Path, store.Defaults{
		Version:  cfg.Search.DefaultVersion,
		Language: cfg.Language.Default,
	})
	if err != nil {
		return nil, err
	}

	var interactions *audit.Logger
	if !opts.noAudit && cfg.Audit.Path != "" {
		interactions, err = audit.NewLogger(cfg.Audit.Path)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	searcher := opts.searcher
	if searcher == nil {
		r := providers.NewRouter()
		r.Register(providers.BibleGateway, biblegateway.New(cfg.Search.BaseURL, cfg.SearchTimeout()))
		searcher = providers.NewCachedSearcher(r, cfg.CacheTTL(), log)
	}

	paginator := paging.New(cfg.PagingDisplay(), searcher, db)
	return &app{
		cfg:       cfg,
		log:       log,
		catalog:   catalog,
		store:     db,
		audit:     interactions,
		paginator: paginator,
		router: commands.NewRouter(commands.Options{
			Paginator:     paginator,
			Preferences:   db,
			Catalog:       catalog,
			CommandPrefix: cfg.Display.CommandPrefix,
			Audit:         interactions,
			Logger:        log,
		}),
	}, nil
}

func (a *app) Close() error {
	var closers []io.Closer
	if a.audit != nil {
		closers = append(closers, a.audit)
	}
	closers = append(closers, a.store)

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
