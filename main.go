package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"people/cache"
	"people/config"
	"people/db"
	handler "people/http"
	"people/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	envFile := flag.String("env-file", ".env", "path to dotenv file, ignored when missing")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	repo, closeCache, err := withCache(repo, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeCache()

	if cfg.Server.PprofAddr != "" {
		go func() {
			log.Info("pprof listening", "addr", cfg.Server.PprofAddr)
			if err := http.ListenAndServe(cfg.Server.PprofAddr, nil); err != nil {
				log.Warn("pprof server", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(handler.New(repo, log), log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "store", cfg.Database.Store, "cache", cfg.Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (db.Repository, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return db.NewMemoryRepository(), func() {}, nil
	}

	if cfg.URL == config.DefaultDatabaseURL {
		log.Warn("DATABASE_URL not set, using development default")
	}

	pool, err := db.Connect(ctx, db.PoolConfig{
		URL:             cfg.URL,
		MaxConns:        cfg.MaxConns,
		ConnectTimeout:  cfg.ConnectTimeout,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	log.Info("connected to postgres", "max_conns", cfg.MaxConns)
	return db.NewPostgresRepository(pool, cfg.QueryTimeout), pool.Close, nil
}

func withCache(repo db.Repository, cfg config.CacheConfig, log *slog.Logger) (db.Repository, func(), error) {
	switch cfg.Backend {
	case config.CacheLocal:
		store, err := cache.NewLocalStore(cfg.MaxItems, cfg.MaxBytes)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRepository(repo, store), store.Close, nil

	case config.CacheRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Warn("close redis client", "error", err)
			}
		}
		return cache.NewRepository(repo, cache.NewRedisStore(client, cfg.TTL, log)), closeClient, nil

	default:
		return repo, func() {}, nil
	}
}
