package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/chess-room/internal/archive"
	"github.com/park285/chess-room/internal/config"
	"github.com/park285/chess-room/internal/httpapi"
	"github.com/park285/chess-room/internal/live"
	"github.com/park285/chess-room/internal/msgcat"
	"github.com/park285/chess-room/internal/obslog"
	"github.com/park285/chess-room/internal/room"
	"github.com/park285/chess-room/internal/rules"
	"github.com/park285/chess-room/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.Init(cfg.Log); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = obslog.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		Backend:     cfg.Store.Backend,
		RedisURL:    cfg.Store.RedisURL,
		DatabaseURL: cfg.Store.DatabaseURL,
		SQLitePath:  cfg.Store.SQLitePath,
		RecordTTL:   cfg.Store.RecordTTL,
	})
	if err != nil {
		logger.Fatal("store_open_error", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	rl, err := rules.New(rules.Config{
		Backend:       cfg.Rules.Backend,
		BridgeCommand: cfg.Rules.BridgeCommand,
		RemoteURL:     cfg.Rules.RemoteURL,
		Timeout:       cfg.Rules.Timeout,
	})
	if err != nil {
		logger.Fatal("rules_init_error", zap.String("backend", cfg.Rules.Backend), zap.Error(err))
	}

	cat, err := msgcat.New(cfg.Messages.Dir)
	if err != nil {
		logger.Fatal("messages_load_error", zap.String("dir", cfg.Messages.Dir), zap.Error(err))
	}

	opts := []room.Option{}
	if cfg.Archive.Enabled {
		repo, err := archive.NewRepository(ctx, cfg.Archive.DatabaseURL)
		if err != nil {
			logger.Fatal("archive_open_error", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()
		opts = append(opts, room.WithArchive(repo))
	}
	mgr := room.NewManager(st, rl, opts...)

	pub := live.NewPublisher(st, live.Config{
		Interval:    cfg.Live.Interval,
		MaxTicks:    cfg.Live.MaxTicks(),
		MaxErrors:   cfg.Live.MaxErrors,
		BackoffBase: cfg.Live.BackoffBase,
		BackoffMax:  cfg.Live.BackoffMax,
	}, live.WithErrorText(cat.Text("live.server_error", nil, "")))

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpapi.NewServer(mgr, pub, cat, cfg.Server).Router(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http_listen",
			zap.String("addr", cfg.Server.HTTPAddr),
			zap.String("store", cfg.Store.Backend),
			zap.String("rules", cfg.Rules.Backend),
			zap.Bool("archive", cfg.Archive.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("http_shutdown")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server_exit", zap.Error(err))
		os.Exit(1)
	}
}
