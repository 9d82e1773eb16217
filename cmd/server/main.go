package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpadapter "cv-builder/internal/adapter/http"
	repo "cv-builder/internal/adapter/repository"
	"cv-builder/internal/auth"
	"cv-builder/internal/config"
	"cv-builder/internal/editor"
	"cv-builder/internal/infrastructure/migration"
	"cv-builder/internal/logger"
	"cv-builder/internal/metrics"
	"cv-builder/internal/usecase"
	"cv-builder/pkg/ai"
	infra "cv-builder/pkg/infrastructure"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// closers run in reverse order on exit.
type closers []func() error

func (c *closers) add(f func() error) { *c = append(*c, f) }

func (c *closers) closeAll(log *zap.Logger) {
	for i := len(*c) - 1; i >= 0; i-- {
		if err := (*c)[i](); err != nil {
			log.Warn("close failed", zap.Error(err))
		}
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var cl closers
	defer cl.closeAll(log)

	store, history, err := openStore(ctx, cfg, log, &cl)
	if err != nil {
		return err
	}
	if !cfg.Export.History {
		history = nil
	}
	objects, err := openObjectStore(ctx, cfg, &cl)
	if err != nil {
		return err
	}
	draft, ats, err := openAI(ctx, cfg, &cl)
	if err != nil {
		return err
	}
	authSvc, err := openAuth(ctx, cfg, log, &cl)
	if err != nil {
		return err
	}

	mgr := editor.NewManager(store, editor.Options{
		Debounce:    cfg.Editor.Debounce,
		SaveTimeout: cfg.Editor.SaveTimeout,
	}, log.Named("editor"), m)
	unwatch := mgr.Watch(authSvc.State())
	defer unwatch()

	format, err := usecase.ParsePageFormat(cfg.Export.Format)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	h := httpadapter.NewHandler(httpadapter.Deps{
		Editor:    mgr,
		Exporter:  usecase.NewExporter(infra.NewChromedpCapturer(cfg.Export.ChromePath, cfg.Export.Timeout), history, log.Named("export"), m, cfg.Export.Scale),
		Photos:    usecase.NewPhotoService(objects, usecase.PhotoOptions{MaxDimension: cfg.Photo.MaxDimension, Quality: cfg.Photo.Quality}, log.Named("photos"), m),
		Assistant: usecase.NewAssistant(draft, ats, log.Named("ai"), m),
		Auth:      authSvc,
		Cookie:    httpadapter.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		Format:    format,
		Logger:    log.Named("http"),
		Metrics:   m,
	})
	appCfg := httpadapter.AppConfig{AllowOrigins: cfg.Server.AllowOrigins}
	if cfg.Photo.Driver == "local" {
		appCfg.MediaDir = cfg.Photo.Dir
	}
	app := httpadapter.NewApp(h, appCfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver))
		return app.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)

		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if ferr := mgr.Flush(flushCtx); ferr != nil {
			log.Error("pending saves lost on shutdown", zap.Error(ferr))
		}
		return err
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger, cl *closers) (editor.Store, usecase.ExportLog, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := infra.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		cl.add(func() error { pool.Close(); return nil })
		if err := migration.RunMigrations(ctx, pool, log.Named("migration")); err != nil {
			return nil, nil, err
		}
		return repo.NewPostgresStore(pool), repo.NewExportsRepo(pool), nil
	case "firestore":
		client, err := infra.NewFirestoreClient(ctx, cfg.Storage.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		cl.add(client.Close)
		// Firestore keeps documents only; export history needs postgres or sqlite.
		return repo.NewFirestoreStore(client, cfg.Storage.Collection), nil, nil
	default:
		s, err := repo.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		cl.add(s.Close)
		return s, s, nil
	}
}

func openObjectStore(ctx context.Context, cfg config.Config, cl *closers) (usecase.ObjectStore, error) {
	if cfg.Photo.Driver == "gcs" {
		client, err := infra.NewStorageClient(ctx)
		if err != nil {
			return nil, err
		}
		cl.add(client.Close)
		return infra.NewGCSObjectStore(client, cfg.Photo.Bucket), nil
	}
	base := cfg.Photo.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(cfg.Server.PublicURL, "/") + "/media"
	}
	return infra.NewLocalObjectStore(cfg.Photo.Dir, base)
}

func openAI(ctx context.Context, cfg config.Config, cl *closers) (usecase.Formatter, usecase.Formatter, error) {
	if cfg.AI.Provider == "vertex" {
		vc, err := ai.NewVertexClient(ctx, cfg.AI.ProjectID, cfg.AI.Region, cfg.AI.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("vertex: %w", err)
		}
		cl.add(vc.Close)
		return vc.NewDraftFormatter(), vc.NewATSFormatter(), nil
	}
	c := ai.NewClient(cfg.AI.ServiceURL, cfg.AI.Timeout)
	return c.NewDraftFormatter(), c.NewATSFormatter(), nil
}

func openAuth(ctx context.Context, cfg config.Config, log *zap.Logger, cl *closers) (*auth.Service, error) {
	var v *auth.Verifier
	if cfg.Auth.PublicKeyPath != "" {
		pub, err := auth.LoadRSAPublicKey(cfg.Auth.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		v = auth.NewRSAVerifier(pub, cfg.Auth.Issuer, cfg.Auth.Audience)
	} else {
		v = auth.NewHMACVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.Audience)
	}

	var reg auth.Registry = auth.NewMemoryRegistry()
	if cfg.Auth.Registry == "redis" {
		rdb, err := infra.NewRedisClient(ctx, cfg.Redis.Addrs, cfg.Redis.Password, cfg.Redis.Cluster)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		cl.add(rdb.Close)
		reg = auth.NewRedisRegistry(rdb)
	}
	return auth.NewService(v, reg, auth.NewState(), log.Named("auth")), nil
}
