//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"review_dashboard/internal/adapters/csvsource"
	server "review_dashboard/internal/adapters/http_server"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	mysqlrepo "review_dashboard/internal/storage/mysql"
)

const exportCSV = `UGC ID,Brand Name,Product Name,SKU,PGC_Desc,Review Rating,Created Date,Review Headline,Review Comments
u1,Acme,Phone,P1,Electronics-Catalog,1,2022-03-01,Dead,Broken screen
u2,Acme,Phone,P1,Electronics-Catalog,5,2023-03-01,Great,Love it
u3,Acme,Lamp,L1,Home - OTHER,3,05/01/2023,Meh,
u4,Bolt,Hose,H1,Garden-Solo,4,2021-08-09,Fine,Does the job
u5,Bolt,Hose,H1,Garden-Solo,zero,2021-08-09,Bad row,dropped
`

// ---------- helpers ----------
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
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

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_ImportThenQuery(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviews",
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

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviews?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(context.Background(), dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	ctx := context.Background()

	// Import the export the way cmd/importer does.
	raw, err := csvsource.Read(ctx, strings.NewReader(exportCSV))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	reviews, rep := analysis.NewNormalizer(analysis.ModeLenient).NormalizeAll(raw)
	if rep.Kept != 4 || rep.Reasons["parse:Review Rating"] != 1 {
		t.Fatalf("unexpected drop report: %+v", rep)
	}
	store := mysqlrepo.New(db)
	if err := store.UpsertReviews(ctx, reviews); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}

	// Serve from MySQL with a redis cache in front of the dashboard.
	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "e2e:")
	repo := app.NewDatasetRepository(store, analysis.NewNormalizer(analysis.ModeLenient))
	if _, err := repo.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	q := app.NewQueryService(repo, cache, app.Settings{}, app.TextServices{})
	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var dash domain.DashboardView
	getJSON(t, ts.URL+"/v1/dashboard?brand=Acme", &dash)
	if dash.Metrics.Count != 3 || dash.Metrics.OneStarCount != 1 {
		t.Fatalf("unexpected metrics: %+v", dash.Metrics)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one cached dashboard, got %v", mr.Keys())
	}

	// A new row changes the table version; the next request sees it.
	late := reviews[0]
	late.ID = "u6"
	if err := store.UpsertReviews(ctx, []domain.Review{late}); err != nil {
		t.Fatalf("UpsertReviews: %v", err)
	}
	var m domain.Metrics
	getJSON(t, ts.URL+"/v1/metrics?brand=Acme", &m)
	if m.Count != 4 || m.OneStarCount != 2 {
		t.Fatalf("expected reload after version change, got %+v", m)
	}
}
