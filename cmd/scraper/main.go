package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewscope/internal/adapters/appstore"
	"reviewscope/internal/adapters/googleplay"
	"reviewscope/internal/adapters/observability"
	redisad "reviewscope/internal/adapters/redis"
	"reviewscope/internal/adapters/trustpilot"
	"reviewscope/internal/app"
	"reviewscope/internal/domain"
	"reviewscope/internal/report"
	"reviewscope/internal/shared"
	"reviewscope/internal/snapshot"
	mysqlrepo "reviewscope/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// metrics endpoint for long runs, enabled via METRICS_ADDR
	observability.Serve()

	log.Info().
		Str("country", cfg.Country).
		Dur("page_delay", cfg.PageDelay).
		Int("max_pages", cfg.MaxPages).
		Msg("scraper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	tp := trustpilot.New(cfg.TrustpilotBase, cfg.PageDelay)
	as := appstore.New(cfg.AppStoreBase, cfg.Country, cfg.PageDelay)
	gp := googleplay.New(cfg.PlayStoreBase, cfg.Country, cfg.PageDelay)

	// One pass per app per source, app stores first. The order is part of the
	// run's identity: summaries and snapshots list legs in this order.
	var jobs []app.ScrapeJob
	for _, t := range shared.Targets {
		jobs = append(jobs,
			app.ScrapeJob{Connector: as, Target: domain.Target{Company: t.Company, AppID: t.AppStoreID, Country: cfg.Country, MaxPages: cfg.MaxPages}},
			app.ScrapeJob{Connector: gp, Target: domain.Target{Company: t.Company, AppID: t.PlayPackage, Country: cfg.Country, MaxPages: cfg.MaxPages}},
			app.ScrapeJob{Connector: tp, Target: domain.Target{Company: t.Company, AppID: t.TrustpilotSlug, Country: cfg.Country, MaxPages: cfg.MaxPages}},
		)
	}

	svc := app.NewScrapeService(repo, cache, cfg.SourceDelay)
	sum, err := svc.Run(ctx, jobs)
	if err != nil {
		log.Fatal().Err(err).Msg("scrape run failed")
	}

	path := filepath.Join(cfg.SnapshotDir, snapshot.Filename(time.Now()))
	if err := snapshot.Write(path, sum.Reviews); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("write snapshot failed")
	}
	log.Info().Str("path", path).Int("reviews", len(sum.Reviews)).Msg("snapshot written")

	report.ScrapeSummary(os.Stdout, sum)
	log.Info().Msg("scrape completed")
}
