package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"reviewscope/internal/domain"
)

// ScrapeJob pairs one connector with one target app.
type ScrapeJob struct {
	Connector domain.Connector
	Target    domain.Target
}

type SourceSummary struct {
	Source    domain.Source
	Company   string
	Pages     int
	Collected int
	Reason    domain.StopReason
}

type RunSummary struct {
	Sources []SourceSummary
	Reviews []domain.Review // deduplicated, in collection order
	Removed int             // duplicates dropped
}

// ScrapeService drives a scrape run: each job to completion, strictly in
// order, then a single dedup pass before anything is persisted. A connector
// that stops early contributes its partial result and never aborts the run.
type ScrapeService struct {
	repo        domain.ReviewRepository
	cache       domain.Cache
	sourceDelay time.Duration
}

func NewScrapeService(repo domain.ReviewRepository, cache domain.Cache, sourceDelay time.Duration) *ScrapeService {
	return &ScrapeService{repo: repo, cache: cache, sourceDelay: sourceDelay}
}

func (s *ScrapeService) Run(ctx context.Context, jobs []ScrapeJob) (RunSummary, error) {
	var sum RunSummary
	var collected []domain.Review

	for i, job := range jobs {
		if i > 0 && !sleepCtx(ctx, s.sourceDelay) {
			return sum, ctx.Err()
		}

		src := job.Connector.Source()
		res := job.Connector.Fetch(ctx, job.Target)

		ev := log.Info()
		if res.Reason == domain.StopTransportError || res.Reason == domain.StopMalformedResponse {
			ev = log.Warn().Err(res.Err)
		}
		ev.Str("source", string(src)).
			Str("company", job.Target.Company).
			Int("pages", res.Pages).
			Int("collected", len(res.Reviews)).
			Str("reason", string(res.Reason)).
			Msg("source scrape finished")

		if s.repo != nil {
			if err := s.repo.LogRun(ctx, src, job.Target.Company, res.Pages, len(res.Reviews), res.Reason); err != nil {
				log.Warn().Err(err).Msg("log scrape run failed")
			}
		}

		collected = append(collected, res.Reviews...)
		sum.Sources = append(sum.Sources, SourceSummary{
			Source:    src,
			Company:   job.Target.Company,
			Pages:     res.Pages,
			Collected: len(res.Reviews),
			Reason:    res.Reason,
		})
	}

	sum.Reviews, sum.Removed = Deduplicate(collected)

	if s.repo != nil && len(sum.Reviews) > 0 {
		if err := s.repo.UpsertReviews(ctx, sum.Reviews); err != nil {
			return sum, fmt.Errorf("upsert reviews: %w", err)
		}
	}
	if s.cache != nil {
		companies := map[string]struct{}{}
		for _, r := range sum.Reviews {
			companies[r.Company] = struct{}{}
		}
		for c := range companies {
			s.invalidateCompany(ctx, c)
		}
	}
	return sum, nil
}

// invalidateCompany drops the stat cache and the common review-list variants
// so the API never serves a pre-run snapshot.
func (s *ScrapeService) invalidateCompany(ctx context.Context, company string) {
	_ = s.cache.Del(ctx, "stats:"+company)
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("reviews:%s::%d", company, lim))
	}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
