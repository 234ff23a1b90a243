package app

import (
	"context"
	"fmt"
	"time"

	"reviewscope/internal/analyze"
	"reviewscope/internal/classify"
	"reviewscope/internal/domain"
)

// SourceStat is the per-platform slice of a company's stats.
type SourceStat struct {
	Source        domain.Source `json:"source"`
	Count         int           `json:"count"`
	AverageRating *float64      `json:"average_rating,omitempty"`
}

// CompanyStats is the API read model. Tags are recomputed from review text
// on every cache miss; nothing here is stored.
type CompanyStats struct {
	Company         string                  `json:"company"`
	Total           int                     `json:"total"`
	AverageRating   *float64                `json:"average_rating,omitempty"`
	BillingDominant int                     `json:"billing_dominant"`
	ProductFocused  int                     `json:"product_focused"`
	Categories      []analyze.CategoryCount `json:"categories"`
	Sources         []SourceStat            `json:"sources"`
}

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cls      *classify.Classifier
	agg      *analyze.Aggregator
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, cls *classify.Classifier, ttl time.Duration) *QueryService {
	return &QueryService{
		repo:     r,
		cache:    c,
		cls:      cls,
		agg:      analyze.New(cls.Rules()),
		cacheTTL: ttl,
	}
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	key := fmt.Sprintf("reviews:%s:%s:%d", q.Company, q.Source, q.Limit)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return nil, err
	}

	// copy before caching so callers can't mutate the cached value
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

func (s *QueryService) CompanyStats(ctx context.Context, company string) (CompanyStats, error) {
	key := "stats:" + company
	var out CompanyStats
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := s.repo.ListReviews(ctx, domain.ReviewsQuery{Company: company})
	if err != nil {
		return CompanyStats{}, err
	}
	if len(rs) == 0 {
		return CompanyStats{}, domain.ErrNotFound
	}

	tagged := make([]analyze.TaggedReview, 0, len(rs))
	for _, r := range rs {
		res := s.cls.Classify(r.Text)
		tagged = append(tagged, analyze.TaggedReview{
			Review:          r,
			Tags:            res.Tags,
			BillingDominant: res.BillingDominant,
		})
	}

	out = CompanyStats{Company: company, Total: len(tagged)}
	if avg, ok := analyze.AverageRating(tagged); ok {
		out.AverageRating = &avg
	}
	out.BillingDominant, out.ProductFocused = analyze.BillingSplit(tagged)
	out.Categories = s.agg.CategoryBreakdown(tagged)

	for _, src := range []domain.Source{domain.SourceAppStore, domain.SourceGooglePlay, domain.SourceTrustpilot} {
		slice := analyze.Filter(tagged, func(t analyze.TaggedReview) bool { return t.Review.Source == src })
		if len(slice) == 0 {
			continue
		}
		st := SourceStat{Source: src, Count: len(slice)}
		if avg, ok := analyze.AverageRating(slice); ok {
			st.AverageRating = &avg
		}
		out.Sources = append(out.Sources, st)
	}

	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) ListCompanies(ctx context.Context) ([]string, error) {
	var out []string
	if ok, _ := s.cache.Get(ctx, "companies", &out); ok {
		return out, nil
	}
	cs, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, "companies", cs, int(s.cacheTTL.Seconds()))
	return cs, nil
}
