//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"reviewscope/internal/domain"
	mysqlrepo "reviewscope/internal/storage/mysql"
)

// ---------- small helpers ----------
func pint(i int) *int { return &i }
func ptime(t time.Time) *time.Time {
	return &t
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	// Default to the in-repo migrations relative to this package.
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("migrations dir %s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewscope",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviewscope")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	r1 := domain.Review{
		Source:   domain.SourceAppStore,
		Company:  "Calm",
		Rating:   pint(2),
		Date:     ptime(now),
		Title:    "Billing issue",
		Text:     "Charged me twice and no refund yet",
		Username: "ana",
	}
	r2 := domain.Review{
		Source:   domain.SourceGooglePlay,
		Company:  "Calm",
		Rating:   pint(5),
		Date:     ptime(now.Add(-time.Hour)),
		Text:     "Love the sleep stories",
		Username: "bob",
	}
	if err := repo.UpsertReviews(ctx, []domain.Review{r1, r2}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Same company+text again: the unique key must absorb it, not duplicate.
	if err := repo.UpsertReviews(ctx, []domain.Review{r1}); err != nil {
		t.Fatalf("UpsertReviews (repeat): %v", err)
	}

	got, err := repo.ListReviews(ctx, domain.ReviewsQuery{Company: "Calm", Limit: 10})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 reviews after repeated upsert, got %d", len(got))
	}
	// Newest first.
	if got[0].Text != r1.Text {
		t.Fatalf("unexpected order: first=%q", got[0].Text)
	}

	only, err := repo.ListReviews(ctx, domain.ReviewsQuery{Company: "Calm", Source: domain.SourceGooglePlay, Limit: 10})
	if err != nil {
		t.Fatalf("ListReviews (filtered): %v", err)
	}
	if len(only) != 1 || only[0].Username != "bob" {
		t.Fatalf("source filter broken: %+v", only)
	}

	if err := repo.LogRun(ctx, domain.SourceAppStore, "Calm", 3, 2, domain.StopExhausted); err != nil {
		t.Fatalf("LogRun: %v", err)
	}

	companies, err := repo.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(companies) != 1 || companies[0] != "Calm" {
		t.Fatalf("unexpected companies: %v", companies)
	}
}
