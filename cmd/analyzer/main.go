package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"reviewscope/internal/adapters/observability"
	"reviewscope/internal/analyze"
	"reviewscope/internal/classify"
	"reviewscope/internal/domain"
	"reviewscope/internal/report"
	"reviewscope/internal/shared"
	"reviewscope/internal/snapshot"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reviews, path, err := snapshot.LoadLatest(cfg.SnapshotDir)
	if errors.Is(err, domain.ErrNoData) {
		fmt.Println("no review snapshots found; run the scraper first")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("load snapshot failed")
	}
	log.Info().Str("path", path).Int("reviews", len(reviews)).Msg("snapshot loaded")

	rules := classify.DefaultRules()
	rules.Policy = classify.BillingPolicy(cfg.BillingPolicy)
	rules.DistinctThreshold = cfg.BillingThreshold
	rules.ComparativeMargin = cfg.BillingMargin

	cls := classify.New(rules)
	agg := analyze.New(rules)

	byCompany := map[string][]analyze.TaggedReview{}
	for _, r := range reviews {
		res := cls.Classify(r.Text)
		byCompany[r.Company] = append(byCompany[r.Company], analyze.TaggedReview{
			Review:          r,
			Tags:            res.Tags,
			BillingDominant: res.BillingDominant,
		})
	}

	companies := make([]string, 0, len(byCompany))
	for c := range byCompany {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	for _, c := range companies {
		report.Analysis(os.Stdout, agg, c, byCompany[c])
	}
}
