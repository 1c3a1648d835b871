package sqlite_test

import (
	"context"
	"testing"
	"time"

	migrations "github.com/garnizeh/jobpulse/db"
	dbpkg "github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/internal/repository/sqlite"
	"github.com/garnizeh/jobpulse/pkg/models"
)

func setupStore(t *testing.T) (*sqlite.Store, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := dbpkg.Migrate(ctx, d, migrations.Migrations); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	// the shared-cache memory db persists across tests in this package
	for _, stmt := range []string{`DELETE FROM job_skills`, `DELETE FROM jobs`, `DELETE FROM users`} {
		if _, err := d.Exec(ctx, stmt); err != nil {
			d.Close()
			t.Fatalf("failed to reset tables: %v", err)
		}
	}

	return sqlite.New(d, nil), func() { d.Close() }
}

func sampleJob(title, company, location string) *models.JobRecord {
	j := models.NewJobRecord(title, company, location, "desc")
	j.Source = "test"
	return j
}

func fl(v float64) *float64 { return &v }

func TestInsertIsIdempotent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	j := sampleJob("Data Engineer", "Acme", "Austin, TX")
	j.Skills = []string{"python", "sql"}

	if !store.Insert(ctx, j) {
		t.Fatalf("expected first insert to succeed")
	}
	if store.Insert(ctx, j) {
		t.Fatalf("expected second insert to be skipped")
	}

	got, err := store.All(ctx, 10)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}

	// skill rows written exactly once per record
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	for _, e := range stats.TopSkills {
		if e.Count != 1 {
			t.Fatalf("expected skill %q counted once, got %d", e.Key, e.Count)
		}
	}
	if len(stats.TopSkills) != 2 {
		t.Fatalf("expected 2 skills, got %v", stats.TopSkills)
	}
}

func TestInsertNil(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	if store.Insert(context.Background(), nil) {
		t.Fatalf("expected nil insert to report not inserted")
	}
}

func TestInsertManyCounts(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	a := sampleJob("Data Engineer", "Acme", "Austin, TX")
	b := sampleJob("ML Engineer", "Globex", "Remote")

	inserted, skipped := store.InsertMany(ctx, []*models.JobRecord{a, b, a})
	if inserted != 2 || skipped != 1 {
		t.Fatalf("expected (2,1), got (%d,%d)", inserted, skipped)
	}
}

func TestGetRoundTrip(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	posted := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	j := sampleJob("Data Engineer", "Acme", "Austin, TX")
	j.SalaryMin = fl(120000)
	j.SalaryMax = fl(180000)
	j.Remote = true
	j.Skills = []string{"python"}
	j.URL = "https://example.com/jobs/1"
	j.PostedDate = &posted

	if !store.Insert(ctx, j) {
		t.Fatalf("insert failed")
	}

	got, err := store.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected record")
	}
	if got.Title != j.Title || got.Company != j.Company || !got.Remote {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.SalaryMin == nil || *got.SalaryMin != 120000 {
		t.Fatalf("salary_min mismatch: %+v", got.SalaryMin)
	}
	if got.URL != j.URL {
		t.Fatalf("url mismatch: %q", got.URL)
	}
	if got.PostedDate == nil || !got.PostedDate.Equal(posted) {
		t.Fatalf("posted_date mismatch: %v", got.PostedDate)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing id")
	}
}

func TestSearchFiltersAreConjunctive(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	remote := sampleJob("Data Engineer", "Acme Corp", "Remote")
	remote.Remote = true
	onsite := sampleJob("Data Engineer", "Acme Corp", "Austin, TX")
	other := sampleJob("Data Engineer", "Globex", "Remote")
	other.Remote = true

	store.InsertMany(ctx, []*models.JobRecord{remote, onsite, other})

	got, err := store.Search(ctx, models.SearchFilters{Company: "acme", RemoteOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].ID != remote.ID {
		t.Fatalf("wrong record returned: %+v", got[0])
	}
}

func TestSearchMinSalaryAndLevel(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	low := sampleJob("Engineer", "Acme", "Austin, TX")
	low.SalaryMin = fl(90000)
	low.ExperienceLevel = models.LevelSenior
	high := sampleJob("Engineer", "Acme", "Austin, TX")
	high.SalaryMin = fl(150000)
	high.ExperienceLevel = models.LevelSenior
	mid := sampleJob("Engineer", "Acme", "Austin, TX")
	mid.SalaryMin = fl(150000)
	mid.ExperienceLevel = models.LevelMid

	store.InsertMany(ctx, []*models.JobRecord{low, high, mid})

	got, err := store.Search(ctx, models.SearchFilters{MinSalary: 100000, ExperienceLevel: models.LevelSenior})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != high.ID {
		t.Fatalf("expected only the senior high-salary record, got %d", len(got))
	}
}

func TestSearchSkillPostFilter(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	py := sampleJob("Engineer", "Acme", "Remote")
	py.Skills = []string{"python", "sql"}
	java := sampleJob("Engineer", "Globex", "Remote")
	java.Skills = []string{"java"}

	store.InsertMany(ctx, []*models.JobRecord{py, java})

	got, err := store.Search(ctx, models.SearchFilters{Skills: []string{"Python", "aws"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != py.ID {
		t.Fatalf("expected only the python record, got %d", len(got))
	}
}

func TestSearchOrderedByScrapedAtDesc(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	older := sampleJob("Engineer", "Acme", "Remote")
	older.ScrapedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleJob("Engineer", "Acme", "Remote")
	newer.ScrapedAt = time.Now().UTC()

	store.InsertMany(ctx, []*models.JobRecord{older, newer})

	got, err := store.Search(ctx, models.SearchFilters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != newer.ID {
		t.Fatalf("expected newest first")
	}
}

func TestStatsArithmetic(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	a := sampleJob("Engineer", "Acme", "Remote")
	a.ExperienceLevel = models.LevelEntry
	a.SalaryMin, a.SalaryMax = fl(100000), fl(150000)
	b := sampleJob("Engineer", "Globex", "Remote")
	b.ExperienceLevel = models.LevelEntry
	b.SalaryMin, b.SalaryMax = fl(140000), fl(180000)
	b.Remote = true

	store.InsertMany(ctx, []*models.JobRecord{a, b})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalJobs != 2 {
		t.Fatalf("expected total 2, got %d", stats.TotalJobs)
	}

	entry, ok := stats.SalaryByExperience[models.LevelEntry]
	if !ok {
		t.Fatalf("expected Entry salary bounds")
	}
	if entry.Min != 120000 || entry.Max != 165000 {
		t.Fatalf("expected mean bounds (120000, 165000), got (%v, %v)", entry.Min, entry.Max)
	}

	if stats.RemoteCount != 1 || stats.OnSiteCount != 1 {
		t.Fatalf("expected remote split 1/1, got %d/%d", stats.RemoteCount, stats.OnSiteCount)
	}
}

func TestClear(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	j := sampleJob("Engineer", "Acme", "Remote")
	j.Skills = []string{"python"}
	store.Insert(ctx, j)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalJobs != 0 || len(stats.TopSkills) != 0 {
		t.Fatalf("expected empty store, got %+v", stats)
	}
}

func TestUserCreateAndFetch(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error creating nil user")
	}

	u := &models.User{Email: "alice@example.com", PasswordHash: "hash"}
	id, err := store.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero id")
	}

	got, err := store.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != id {
		t.Fatalf("wrong user: %+v", got)
	}

	none, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail missing: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for unknown email")
	}
}
