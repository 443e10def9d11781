package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/knpstore/sport-store/internal/config"
	"github.com/knpstore/sport-store/internal/logger"
	"github.com/knpstore/sport-store/internal/product"
	"github.com/knpstore/sport-store/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		slog.Error("init logger", "err", err)
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	var (
		db       *sql.DB
		users    user.Repository
		products product.Repository
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := ensureSchema(ctx, db); err != nil {
			return err
		}
		pg := product.NewPostgresRepository(db)
		if err := seedProducts(ctx, db, pg); err != nil {
			return err
		}
		users = user.NewPostgresRepository(db)
		products = pg
		log.Info("using postgres storage")
	} else {
		users = user.NewInMemoryRepository(nil)
		products = product.NewInMemoryRepository(product.Generate(rand.New(rand.NewPCG(1, 2)), 1, product.SeedSize))
		log.Warn("DATABASE_URL is not set, using in-memory storage")
	}

	app := newApp(cfg, log, db, users, products)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		return app.Listen(cfg.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return app.ShutdownWithContext(shutdownCtx)
	})
	return g.Wait()
}
