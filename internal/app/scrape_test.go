package app_test

import (
	"context"
	"errors"
	"testing"

	"reviewscope/internal/app"
	"reviewscope/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	upserted []domain.Review
	runs     []string
	reviews  []domain.Review
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	f.upserted = append(f.upserted, rs...)
	return nil
}
func (f *fakeRepo) LogRun(ctx context.Context, src domain.Source, company string, pages, collected int, reason domain.StopReason) error {
	f.runs = append(f.runs, string(src)+"/"+company+"/"+string(reason))
	return nil
}
func (f *fakeRepo) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	return f.reviews, nil
}
func (f *fakeRepo) ListCompanies(ctx context.Context) ([]string, error) {
	return []string{"Calm"}, nil
}

type fakeCache struct {
	store   map[string]any
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Review:
		*d = v.([]domain.Review)
	case *[]string:
		*d = v.([]string)
	case *app.CompanyStats:
		*d = v.(app.CompanyStats)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}

type fakeConnector struct {
	src domain.Source
	res domain.ScrapeResult
}

func (f *fakeConnector) Source() domain.Source { return f.src }
func (f *fakeConnector) Fetch(ctx context.Context, t domain.Target) domain.ScrapeResult {
	return f.res
}

// ---- tests ----

func TestScrapeRun_PartialResultsSurviveTransportError(t *testing.T) {
	ok := &fakeConnector{
		src: domain.SourceAppStore,
		res: domain.ScrapeResult{
			Reviews: []domain.Review{
				{Company: "Calm", Source: domain.SourceAppStore, Text: "fine"},
			},
			Pages:  2,
			Reason: domain.StopExhausted,
		},
	}
	broken := &fakeConnector{
		src: domain.SourceTrustpilot,
		res: domain.ScrapeResult{
			Reviews: []domain.Review{
				{Company: "Calm", Source: domain.SourceTrustpilot, Text: "partial"},
			},
			Pages:  1,
			Reason: domain.StopTransportError,
			Err:    errors.New("connection reset"),
		},
	}

	repo := &fakeRepo{}
	svc := app.NewScrapeService(repo, &fakeCache{}, 0)

	sum, err := svc.Run(context.Background(), []app.ScrapeJob{
		{Connector: ok, Target: domain.Target{Company: "Calm"}},
		{Connector: broken, Target: domain.Target{Company: "Calm"}},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if len(sum.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2 (partial page kept)", len(sum.Reviews))
	}
	if len(sum.Sources) != 2 || sum.Sources[1].Reason != domain.StopTransportError {
		t.Fatalf("unexpected summaries: %+v", sum.Sources)
	}
	if len(repo.upserted) != 2 {
		t.Fatalf("upserted = %d, want 2", len(repo.upserted))
	}
	if len(repo.runs) != 2 {
		t.Fatalf("runs logged = %d, want 2", len(repo.runs))
	}
}

func TestScrapeRun_DedupAcrossSources(t *testing.T) {
	a := &fakeConnector{
		src: domain.SourceAppStore,
		res: domain.ScrapeResult{
			Reviews: []domain.Review{{Company: "Calm", Source: domain.SourceAppStore, Text: "same"}},
			Pages:   1,
			Reason:  domain.StopExhausted,
		},
	}
	b := &fakeConnector{
		src: domain.SourceGooglePlay,
		res: domain.ScrapeResult{
			Reviews: []domain.Review{{Company: "Calm", Source: domain.SourceGooglePlay, Text: "same"}},
			Pages:   1,
			Reason:  domain.StopExhausted,
		},
	}

	svc := app.NewScrapeService(&fakeRepo{}, &fakeCache{}, 0)
	sum, err := svc.Run(context.Background(), []app.ScrapeJob{
		{Connector: a, Target: domain.Target{Company: "Calm"}},
		{Connector: b, Target: domain.Target{Company: "Calm"}},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(sum.Reviews) != 1 || sum.Removed != 1 {
		t.Fatalf("kept=%d removed=%d, want 1/1", len(sum.Reviews), sum.Removed)
	}
	if sum.Reviews[0].Source != domain.SourceAppStore {
		t.Fatalf("expected first-seen record to survive, got %s", sum.Reviews[0].Source)
	}
}

func TestScrapeRun_InvalidatesCompanyCache(t *testing.T) {
	c := &fakeConnector{
		src: domain.SourceAppStore,
		res: domain.ScrapeResult{
			Reviews: []domain.Review{{Company: "Calm", Source: domain.SourceAppStore, Text: "x"}},
			Pages:   1,
			Reason:  domain.StopExhausted,
		},
	}

	cache := &fakeCache{}
	svc := app.NewScrapeService(&fakeRepo{}, cache, 0)
	if _, err := svc.Run(context.Background(), []app.ScrapeJob{
		{Connector: c, Target: domain.Target{Company: "Calm"}},
	}); err != nil {
		t.Fatalf("err: %v", err)
	}

	want := map[string]bool{"stats:Calm": true}
	for _, k := range cache.deleted {
		delete(want, k)
	}
	if len(want) != 0 {
		t.Fatalf("stats key not invalidated, deleted: %v", cache.deleted)
	}
}
