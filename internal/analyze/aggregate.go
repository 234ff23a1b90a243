package analyze

import (
	"sort"

	"reviewscope/internal/classify"
	"reviewscope/internal/domain"
)

// TaggedReview pairs a review with its derived classification.
type TaggedReview struct {
	Review          domain.Review
	Tags            []classify.Tag
	BillingDominant bool
}

// Dimension names one axis of a group-by.
type Dimension string

const (
	DimCompany  Dimension = "company"
	DimSource   Dimension = "source"
	DimCategory Dimension = "category"
	DimRating   Dimension = "rating"
)

// Key is a dimension tuple; fields outside the requested dimensions stay at
// their zero value. Rating 0 stands for "no rating".
type Key struct {
	Company  string
	Source   domain.Source
	Category string
	Rating   int
}

type Stat struct {
	Count int
	// Percent is relative to the reviews matching the key's non-category
	// dimensions, so "4 of company X's 10 reviews tagged crash" reads 40.0.
	Percent float64
}

type CategoryCount struct {
	Category string
	Count    int
	Percent  float64
}

// Aggregator computes frequency statistics over tagged reviews. It is a pure
// function of its input; the only state is the category declaration order
// used to break count ties deterministically.
type Aggregator struct {
	catOrder map[string]int
}

func New(rules classify.Rules) *Aggregator {
	return &Aggregator{catOrder: rules.CategoryOrder()}
}

// Group buckets reviews by any subset of {company, source, category, rating}.
// A review with N tags contributes N entries when category is a dimension,
// one entry otherwise.
func (a *Aggregator) Group(items []TaggedReview, dims ...Dimension) map[Key]Stat {
	want := map[Dimension]bool{}
	for _, d := range dims {
		want[d] = true
	}

	counts := map[Key]int{}
	parents := map[Key]int{} // same key minus category, denominator for Percent
	for _, it := range items {
		base := Key{}
		if want[DimCompany] {
			base.Company = it.Review.Company
		}
		if want[DimSource] {
			base.Source = it.Review.Source
		}
		if want[DimRating] && it.Review.Rating != nil {
			base.Rating = *it.Review.Rating
		}
		parents[base]++

		if !want[DimCategory] {
			counts[base]++
			continue
		}
		for _, tag := range it.Tags {
			k := base
			k.Category = tag.Category
			counts[k]++
		}
	}

	out := make(map[Key]Stat, len(counts))
	for k, n := range counts {
		parent := k
		parent.Category = ""
		denom := parents[parent]
		st := Stat{Count: n}
		if denom > 0 {
			st.Percent = float64(n) / float64(denom) * 100
		}
		out[k] = st
	}
	return out
}

// CategoryBreakdown ranks all categories over a review set, count descending;
// ties break on the category's declaration order in the rule table.
func (a *Aggregator) CategoryBreakdown(items []TaggedReview) []CategoryCount {
	counts := map[string]int{}
	for _, it := range items {
		for _, tag := range it.Tags {
			counts[tag.Category]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for cat, n := range counts {
		cc := CategoryCount{Category: cat, Count: n}
		if len(items) > 0 {
			cc.Percent = float64(n) / float64(len(items)) * 100
		}
		out = append(out, cc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return a.catOrder[out[i].Category] < a.catOrder[out[j].Category]
	})
	return out
}

// TopCategories returns the first n entries of CategoryBreakdown.
func (a *Aggregator) TopCategories(items []TaggedReview, n int) []CategoryCount {
	all := a.CategoryBreakdown(items)
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// BillingSplit counts billing-dominant vs product-focused reviews.
func BillingSplit(items []TaggedReview) (billing, product int) {
	for _, it := range items {
		if it.BillingDominant {
			billing++
		} else {
			product++
		}
	}
	return billing, product
}

// AverageRating ignores reviews without a rating; ok reports whether any
// rated review was present.
func AverageRating(items []TaggedReview) (avg float64, ok bool) {
	sum, n := 0, 0
	for _, it := range items {
		if it.Review.Rating != nil {
			sum += *it.Review.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// Filter keeps reviews matching pred, preserving order.
func Filter(items []TaggedReview, pred func(TaggedReview) bool) []TaggedReview {
	var out []TaggedReview
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
