package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "reviewscope/internal/adapters/http_server"
	"reviewscope/internal/adapters/observability"
	redisad "reviewscope/internal/adapters/redis"
	"reviewscope/internal/app"
	"reviewscope/internal/classify"
	"reviewscope/internal/shared"
	mysqlrepo "reviewscope/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	rules := classify.DefaultRules()
	rules.Policy = classify.BillingPolicy(cfg.BillingPolicy)
	rules.DistinctThreshold = cfg.BillingThreshold
	rules.ComparativeMargin = cfg.BillingMargin
	q := app.NewQueryService(repo, cache, classify.New(rules), cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.MountHandlers(&server.Handlers{Q: q})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", observability.MetricsHandler(reg))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("shutdown complete")
}
