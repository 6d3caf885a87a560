// Package app assembles the past questions bot from its parts: catalog,
// session store, request log, conversation engine and Telegram transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/pqbot/core/bootstrap"
	"github.com/m3rciful/pqbot/core/logger"
	coretelegram "github.com/m3rciful/pqbot/core/telegram"
	tgsender "github.com/m3rciful/pqbot/core/telegram/sender"
	"github.com/m3rciful/pqbot/internal/bot"
	"github.com/m3rciful/pqbot/internal/catalog"
	"github.com/m3rciful/pqbot/internal/conversation"
	"github.com/m3rciful/pqbot/internal/requestlog"
	"github.com/m3rciful/pqbot/internal/session"
)

// App holds the initialized components.
type App struct {
	Config     *Config
	Infra      *bootstrap.Result
	Catalog    *catalog.Catalog
	Sessions   *session.Store
	Requests   requestlog.Sink
	Engine     *conversation.Engine
	Dispatcher *tgsender.Dispatcher
	Bot        *bot.Bot
}

// Bootstrap initializes logging and the optional database, then builds the
// conversation stack.
func Bootstrap(cfg *Config) (*App, error) {
	return bootstrapWith(cfg, bootstrap.Options{})
}

func bootstrapWith(cfg *Config, opts bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	opts.Config = &cfg.Core
	opts.Database = cfg.Database
	opts.Migrations = bootstrap.Migrations{FS: requestlog.Migrations, Dir: requestlog.MigrationsDir}
	infra, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	if missing := catalog.Missing(cat.CheckFiles(cfg.Catalog.DocumentsDir)); missing > 0 {
		logger.Warn(context.Background(), logger.CompCatalog, "files.missing",
			slog.String("documents_dir", cfg.Catalog.DocumentsDir),
			slog.Int("missing", missing),
			slog.Int("documents", cat.Len()),
		)
	}

	fileSink := requestlog.NewFileSink(cfg.Requests.File)
	var requests requestlog.Sink = fileSink
	if infra.DB != nil {
		requests = requestlog.Tee{Primary: fileSink, Mirrors: []requestlog.Sink{requestlog.NewSQLSink(infra.DB)}}
	}

	sessions := session.NewStore(session.Options{IdleTTL: cfg.Session.IdleTTL})
	engine := conversation.New(cat, sessions, requests, conversation.Options{StartImage: cfg.Assets.StartImage})
	dispatcher := tgsender.NewDispatcher(tgsender.Options{
		Workers:     cfg.Core.Sender.Workers,
		QueueSize:   cfg.Core.Sender.QueueSize,
		MaxDuration: time.Duration(cfg.Core.Sender.MaxDurationMS) * time.Millisecond,
	})

	logger.Info(context.Background(), logger.CompApp, "components.ready",
		slog.Int("documents", cat.Len()),
		slog.String("requests_file", cfg.Requests.File),
		slog.Bool("db", infra.DB != nil),
		slog.Duration("session_idle_ttl", cfg.Session.IdleTTL),
	)

	return &App{
		Config:     cfg,
		Infra:      infra,
		Catalog:    cat,
		Sessions:   sessions,
		Requests:   requests,
		Engine:     engine,
		Dispatcher: dispatcher,
		Bot:        bot.New(engine, bot.Options{DocumentsDir: cfg.Catalog.DocumentsDir, Dispatcher: dispatcher}),
	}, nil
}

// LoadCatalog reads the configured catalog file or falls back to the
// built-in list when none is set.
func LoadCatalog(cfg CatalogConfig) (*catalog.Catalog, error) {
	path := cfg.File
	if path == "" {
		cat := catalog.Default()
		logger.Info(context.Background(), logger.CompCatalog, "load.builtin", slog.Int("documents", cat.Len()))
		return cat, nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("app: catalog: %w", err)
	}
	logger.Info(context.Background(), logger.CompCatalog, "load.file",
		slog.String("path", path),
		slog.Int("documents", cat.Len()),
	)
	return cat, nil
}

// TelegramRunOptions wires the bot into the shared Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a == nil || a.Bot == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: not bootstrapped")
	}
	reg := a.Bot.Registry()
	return coretelegram.RunOptions{
		Config:      &a.Config.Core,
		Registry:    reg,
		Dispatcher:  a.Dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(&a.Config.Core, a.Bot.Hooks()),
		Routes:      a.Bot.Routes(reg),
		OnStop: func(context.Context, coretelegram.Runtime) error {
			logger.Info(context.Background(), logger.CompApp, "sessions.open",
				slog.Int("active", a.Sessions.Active()),
				slog.Uint64("failed_jobs", a.Dispatcher.ErrorCount()),
			)
			return nil
		},
	}, nil
}

// Close stops the dispatcher and releases the database.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	return a.Infra.Close()
}
