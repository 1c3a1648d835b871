package analytics_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garnizeh/jobpulse/db"
	"github.com/garnizeh/jobpulse/internal/analytics"
	idb "github.com/garnizeh/jobpulse/internal/db"
	"github.com/garnizeh/jobpulse/internal/repository/sqlite"
	"github.com/garnizeh/jobpulse/pkg/models"
)

func setupEngine(t *testing.T) (*analytics.Engine, *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	conn, err := idb.New(ctx, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, idb.Migrate(ctx, conn, db.Migrations))
	for _, table := range []string{"job_skills", "jobs"} {
		_, err := conn.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}

	store := sqlite.New(conn, slog.Default())
	return analytics.NewEngine(store, slog.Default()), store
}

func insertJob(t *testing.T, store *sqlite.Store, title, company, location string, min, max float64, level string, remote bool, skills []string, postedDaysAgo int) {
	t.Helper()
	j := models.NewJobRecord(title, company, location, "desc")
	if min > 0 {
		j.SalaryMin = &min
	}
	if max > 0 {
		j.SalaryMax = &max
	}
	j.ExperienceLevel = level
	j.Remote = remote
	j.Skills = skills
	posted := time.Now().AddDate(0, 0, -postedDaysAgo)
	j.PostedDate = &posted
	require.True(t, store.Insert(context.Background(), j), "insert %s", title)
}

func TestCanonicalRole_PriorityOrder(t *testing.T) {
	cases := map[string]string{
		"Senior ML Engineer / Data Engineer": "Data Engineer",
		"Machine Learning Engineer":          "ML Engineer",
		"Staff AI Engineer":                  "AI Engineer",
		"Senior Data Scientist":              "Data Scientist",
		"Backend Developer":                  "Backend Engineer",
		"Fullstack Developer":                "Full Stack Engineer",
		"Site Reliability Engineer (SRE)":    "DevOps Engineer",
		"Analytics Engineer":                 "Analytics Engineer",
		"Product Manager":                    "Other",
	}
	for title, want := range cases {
		require.Equal(t, want, analytics.CanonicalRole(title), "title %q", title)
	}
}

func TestSkillDemand_TopN(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "Data Engineer", "Acme", "Remote", 0, 0, models.LevelMid, true, []string{"python", "sql"}, 1)
	insertJob(t, store, "ML Engineer", "Globex", "Austin, TX", 0, 0, models.LevelMid, false, []string{"python", "aws"}, 2)
	insertJob(t, store, "Backend Developer", "Initech", "Remote", 0, 0, models.LevelMid, true, []string{"java"}, 3)

	skills, err := engine.SkillDemand(ctx, 2)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	require.Equal(t, "python", skills[0].Key)
	require.Equal(t, 2, skills[0].Count)
	require.Equal(t, 1, skills[1].Count)
}

func TestSalaryByExperience_Passthrough(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "Data Engineer", "Acme", "Remote", 100000, 150000, models.LevelEntry, true, nil, 1)
	insertJob(t, store, "Data Engineer II", "Globex", "Remote", 140000, 180000, models.LevelEntry, true, nil, 2)

	byExp, err := engine.SalaryByExperience(ctx)
	require.NoError(t, err)
	require.Equal(t, models.SalaryBounds{Min: 120000, Max: 165000}, byExp[models.LevelEntry])
}

func TestSalaryByRole_MeansPerCanonicalRole(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "Data Engineer", "Acme", "Remote", 100000, 140000, models.LevelMid, true, nil, 1)
	insertJob(t, store, "Senior Data Engineer", "Globex", "Remote", 140000, 180000, models.LevelSenior, true, nil, 2)
	insertJob(t, store, "Product Manager", "Initech", "Remote", 90000, 110000, models.LevelMid, true, nil, 3)

	byRole, err := engine.SalaryByRole(ctx)
	require.NoError(t, err)
	require.Equal(t, models.SalaryBounds{Min: 120000, Max: 160000}, byRole["Data Engineer"])
	require.Equal(t, models.SalaryBounds{Min: 90000, Max: 110000}, byRole["Other"])
}

func TestLocationDistribution_CanonicalizesHubs(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "A", "C1", "Remote (US)", 0, 0, models.LevelMid, true, nil, 1)
	insertJob(t, store, "B", "C2", "San Francisco, CA", 0, 0, models.LevelMid, false, nil, 2)
	insertJob(t, store, "C", "C3", "Brooklyn, New York", 0, 0, models.LevelMid, false, nil, 3)
	insertJob(t, store, "D", "C4", "Portland, OR", 0, 0, models.LevelMid, false, nil, 4)

	dist, err := engine.LocationDistribution(ctx)
	require.NoError(t, err)

	got := make(map[string]int)
	for _, e := range dist {
		got[e.Key] = e.Count
	}
	require.Equal(t, 1, got["Remote"])
	require.Equal(t, 1, got["San Francisco"])
	require.Equal(t, 1, got["New York"])
	require.Equal(t, 1, got["Portland"])
}

func TestRemoteStats_ZeroTotal(t *testing.T) {
	engine, _ := setupEngine(t)

	rs, err := engine.RemoteStats(context.Background())
	require.NoError(t, err)
	require.Zero(t, rs.RemotePercentage)
	require.Zero(t, rs.OnsitePercentage)
}

func TestRemoteStats_Split(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "A", "C1", "Remote", 0, 0, models.LevelMid, true, nil, 1)
	insertJob(t, store, "B", "C2", "Austin, TX", 0, 0, models.LevelMid, false, nil, 2)
	insertJob(t, store, "C", "C3", "Austin, TX", 0, 0, models.LevelMid, false, nil, 3)

	rs, err := engine.RemoteStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rs.RemoteCount)
	require.Equal(t, 2, rs.OnsiteCount)
	require.InDelta(t, 33.3, rs.RemotePercentage, 0.01)
	require.InDelta(t, 66.7, rs.OnsitePercentage, 0.01)
}

func TestSkillSalaryCorrelation_MinimumSampleSize(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	// five salaried postings carry "python", only one carries "go"
	for i := 0; i < 5; i++ {
		insertJob(t, store, "Data Engineer", "Acme", "Remote", 100000+float64(i)*10000, 140000+float64(i)*10000, models.LevelMid, true, []string{"python"}, i+1)
	}
	insertJob(t, store, "Backend Developer", "Globex", "Remote", 200000, 240000, models.LevelMid, true, []string{"go"}, 6)

	skills, err := engine.SkillSalaryCorrelation(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	require.Equal(t, "python", skills[0].Skill)
	// mean of (min+max)/2 over the five postings
	require.Equal(t, float64(140000), skills[0].MeanSalary)
}

func TestTrendingSkills_RecentHalf(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "A", "C1", "Remote", 0, 0, models.LevelMid, true, []string{"rust"}, 1)
	insertJob(t, store, "B", "C2", "Remote", 0, 0, models.LevelMid, true, []string{"rust"}, 2)
	insertJob(t, store, "C", "C3", "Remote", 0, 0, models.LevelMid, true, []string{"cobol"}, 30)
	insertJob(t, store, "D", "C4", "Remote", 0, 0, models.LevelMid, true, []string{"cobol"}, 40)

	trending, err := engine.TrendingSkills(ctx)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	require.Equal(t, "rust", trending[0].Key)
	require.Equal(t, 2, trending[0].Count)
}

func TestRoleComparison(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "Data Engineer", "Acme", "Remote", 100000, 140000, models.LevelMid, true, []string{"python", "sql"}, 1)
	insertJob(t, store, "Senior Data Engineer", "Globex", "Austin, TX", 140000, 180000, models.LevelSenior, false, []string{"python", "spark"}, 2)

	cmp, err := engine.RoleComparison(ctx, "data engineer", "underwater basket weaver")
	require.NoError(t, err)

	require.Equal(t, 2, cmp.RoleA.Count)
	require.Equal(t, float64(120000), cmp.RoleA.AvgSalaryMin)
	require.Equal(t, float64(160000), cmp.RoleA.AvgSalaryMax)
	require.InDelta(t, 50.0, cmp.RoleA.RemotePercentage, 0.01)
	require.NotEmpty(t, cmp.RoleA.TopSkills)
	require.Equal(t, "python", cmp.RoleA.TopSkills[0].Key)

	require.Equal(t, 0, cmp.RoleB.Count)
	require.Empty(t, cmp.RoleB.TopSkills)
}

func TestReport_Snapshot(t *testing.T) {
	engine, store := setupEngine(t)
	ctx := context.Background()

	insertJob(t, store, "Data Engineer", "Acme", "Remote", 100000, 140000, models.LevelMid, true, []string{"python"}, 1)
	insertJob(t, store, "ML Engineer", "Globex", "Austin, TX", 150000, 190000, models.LevelSenior, false, []string{"pytorch"}, 2)

	report, err := engine.Report(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalJobs)
	require.NotEmpty(t, report.TopSkills)
	require.NotEmpty(t, report.SalaryByRole)
	require.NotEmpty(t, report.LocationDistribution)
	require.Equal(t, 1, report.RemoteStats.RemoteCount)
}
