// Package snapshot reads and writes the tabular interchange files that
// connect a scrape run to an analysis run. Column names are a compatibility
// contract with prior snapshots; do not rename them.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"reviewscope/internal/domain"
)

var columns = []string{"source", "company", "rating", "date", "title", "review_text", "username", "version"}

const (
	filePrefix = "reviews_"
	dateLayout = time.RFC3339
)

// Filename returns the snapshot name for a run timestamp.
func Filename(ts time.Time) string {
	return filePrefix + ts.Format("20060102_150405") + ".csv"
}

// Write stores one row per review, in order.
func Write(path string, rs []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range rs {
		rating := ""
		if r.Rating != nil {
			rating = strconv.Itoa(*r.Rating)
		}
		date := ""
		if r.Date != nil {
			date = r.Date.Format(dateLayout)
		}
		row := []string{string(r.Source), r.Company, rating, date, r.Title, r.Text, r.Username, r.AppVersion}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads a snapshot, resolving columns by header name so column order
// in older files does not matter.
func Load(path string) ([]domain.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot %s: empty file", path)
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[h] = i
	}
	for _, want := range columns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("snapshot %s: missing column %q", path, want)
		}
	}
	get := func(row []string, name string) string {
		i := col[name]
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	out := make([]domain.Review, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rv := domain.Review{
			Source:     domain.Source(get(row, "source")),
			Company:    get(row, "company"),
			Title:      get(row, "title"),
			Text:       get(row, "review_text"),
			Username:   get(row, "username"),
			AppVersion: get(row, "version"),
		}
		if s := get(row, "rating"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				rv.Rating = &n
			}
		}
		if s := get(row, "date"); s != "" {
			if t, err := time.Parse(dateLayout, s); err == nil {
				rv.Date = &t
			}
		}
		out = append(out, rv)
	}
	return out, nil
}

// LoadLatest loads the lexically newest snapshot in dir. The timestamped
// naming makes lexical order chronological. No snapshot files at all is the
// terminal no-data condition for an analysis run.
func LoadLatest(dir string) ([]domain.Review, string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.csv"))
	if err != nil {
		return nil, "", err
	}
	if len(matches) == 0 {
		return nil, "", domain.ErrNoData
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]
	rs, err := Load(latest)
	return rs, latest, err
}
