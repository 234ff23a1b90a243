// Package report renders scrape and analysis summaries as console tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"reviewscope/internal/analyze"
	"reviewscope/internal/app"
	"reviewscope/internal/classify"
	"reviewscope/internal/domain"
)

const (
	excerptsPerCategory = 3
	excerptMaxLen       = 100
	topComplaints       = 10
	topRequests         = 10
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// ScrapeSummary prints one row per (source, company) leg of a run plus the
// dedup tally.
func ScrapeSummary(w io.Writer, sum app.RunSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Source", "Company", "Pages", "Collected", "Stopped"})
	for _, s := range sum.Sources {
		t.AppendRow(table.Row{s.Source, s.Company, s.Pages, s.Collected, s.Reason})
	}
	t.AppendFooter(table.Row{"", "Total", "", len(sum.Reviews), fmt.Sprintf("%d duplicates removed", sum.Removed)})
	t.Render()
}

// Analysis renders the full analysis for one company: rating averages,
// billing vs product split, category breakdown, mined complaints and feature
// requests, and sample excerpts.
func Analysis(w io.Writer, agg *analyze.Aggregator, company string, tagged []analyze.TaggedReview) {
	fmt.Fprintf(w, "\n=== %s — %d reviews ===\n", company, len(tagged))

	writeRatings(w, tagged)
	writeRatingDistribution(w, agg, tagged)
	writeBillingSplit(w, tagged)
	cats := writeCategories(w, agg, tagged)
	writeComplaints(w, tagged)
	writeRequests(w, tagged)
	writeExcerpts(w, tagged, cats)
}

func writeRatings(w io.Writer, tagged []analyze.TaggedReview) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Source", "Reviews", "Avg rating"})
	for _, src := range []domain.Source{domain.SourceAppStore, domain.SourceGooglePlay, domain.SourceTrustpilot} {
		slice := analyze.Filter(tagged, func(tr analyze.TaggedReview) bool { return tr.Review.Source == src })
		if len(slice) == 0 {
			continue
		}
		avg := "n/a"
		if a, ok := analyze.AverageRating(slice); ok {
			avg = fmt.Sprintf("%.2f", a)
		}
		t.AppendRow(table.Row{src, len(slice), avg})
	}
	if a, ok := analyze.AverageRating(tagged); ok {
		t.AppendFooter(table.Row{"Overall", len(tagged), fmt.Sprintf("%.2f", a)})
	}
	t.Render()
}

func writeRatingDistribution(w io.Writer, agg *analyze.Aggregator, tagged []analyze.TaggedReview) {
	byRating := agg.Group(tagged, analyze.DimRating)
	t := newTable(w)
	t.AppendHeader(table.Row{"Stars", "Reviews", "%"})
	for stars := 5; stars >= 1; stars-- {
		st, ok := byRating[analyze.Key{Rating: stars}]
		if !ok {
			continue
		}
		pct := float64(st.Count) / float64(len(tagged)) * 100
		t.AppendRow(table.Row{strings.Repeat("★", stars), st.Count, fmt.Sprintf("%.1f", pct)})
	}
	t.Render()
}

func writeBillingSplit(w io.Writer, tagged []analyze.TaggedReview) {
	billing, product := analyze.BillingSplit(tagged)
	fmt.Fprintf(w, "Billing-dominant: %d   Product-focused: %d\n", billing, product)
}

func writeCategories(w io.Writer, agg *analyze.Aggregator, tagged []analyze.TaggedReview) []analyze.CategoryCount {
	cats := agg.CategoryBreakdown(tagged)
	if len(cats) == 0 {
		return nil
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Reviews", "%"})
	for _, c := range cats {
		t.AppendRow(table.Row{c.Category, c.Count, fmt.Sprintf("%.1f", c.Percent)})
	}
	t.Render()
	return cats
}

type countedLine struct {
	text  string
	count int
}

// topLines counts normalized lines and returns the n most frequent,
// ties broken alphabetically so output is stable.
func topLines(counts map[string]int, n int) []countedLine {
	out := make([]countedLine, 0, len(counts))
	for s, c := range counts {
		out = append(out, countedLine{text: s, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].text < out[j].text
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func writeComplaints(w io.Writer, tagged []analyze.TaggedReview) {
	counts := map[string]int{}
	for _, tr := range tagged {
		for _, c := range classify.ExtractComplaints(tr.Review.Text) {
			counts[c.Type+": "+c.Detail]++
		}
	}
	if len(counts) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Complaint", "Mentions"})
	for _, l := range topLines(counts, topComplaints) {
		t.AppendRow(table.Row{l.text, l.count})
	}
	t.Render()
}

func writeRequests(w io.Writer, tagged []analyze.TaggedReview) {
	counts := map[string]int{}
	for _, tr := range tagged {
		for _, req := range classify.ExtractFeatureRequests(tr.Review.Text) {
			counts[strings.ToLower(req)]++
		}
	}
	if len(counts) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Feature request", "Mentions"})
	for _, l := range topLines(counts, topRequests) {
		t.AppendRow(table.Row{l.text, l.count})
	}
	t.Render()
}

func writeExcerpts(w io.Writer, tagged []analyze.TaggedReview, cats []analyze.CategoryCount) {
	for _, c := range cats {
		shown := 0
		for _, tr := range tagged {
			if shown == excerptsPerCategory {
				break
			}
			if !hasTag(tr, c.Category) {
				continue
			}
			fmt.Fprintf(w, "  [%s] %s\n", c.Category, excerpt(tr.Review.Text))
			shown++
		}
	}
}

func hasTag(tr analyze.TaggedReview, category string) bool {
	for _, tag := range tr.Tags {
		if tag.Category == category {
			return true
		}
	}
	return false
}

// excerpt trims a review to one printable ASCII line. Emoji-heavy store
// reviews otherwise wreck the table layout.
func excerpt(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r >= 32 && r < 127:
			b.WriteRune(r)
		}
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	if len(s) > excerptMaxLen {
		s = s[:excerptMaxLen] + "..."
	}
	return s
}
