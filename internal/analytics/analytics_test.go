package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachboard/coachboard-client/internal/models"
)

func tasksWith(statuses ...string) []models.Task {
	out := make([]models.Task, len(statuses))
	for i, s := range statuses {
		out[i] = models.Task{ID: int64(i + 1), Status: models.ParseTaskStatus(s)}
	}
	return out
}

func TestTaskDistribution(t *testing.T) {
	tasks := tasksWith("todo", "DONE", "in-progress", "done", "archived", "blocked")

	got := TaskDistribution(tasks)

	require.Len(t, got, 4)
	assert.Equal(t, []Bucket{
		{Name: "todo", Count: 1, Color: "#6b7280"},
		{Name: "in_progress", Count: 1, Color: "#3b82f6"},
		{Name: "done", Count: 2, Color: "#10b981"},
		{Name: "blocked", Count: 1, Color: "#ef4444"},
	}, got)

	sum := 0
	for _, b := range got {
		sum += b.Count
	}
	assert.Equal(t, 5, sum, "unknown status excluded")
}

func TestTaskDistributionEmpty(t *testing.T) {
	got := TaskDistribution(nil)
	require.Len(t, got, 4)
	for _, b := range got {
		assert.Zero(t, b.Count)
	}
	for _, pct := range TaskPercentages(got) {
		assert.Zero(t, pct)
	}
}

func TestTaskPercentages(t *testing.T) {
	pct := TaskPercentages(TaskDistribution(tasksWith("todo", "done", "done")))
	assert.Equal(t, 33, pct["todo"])
	assert.Equal(t, 67, pct["done"])
	assert.Equal(t, 0, pct["blocked"])
}

func TestRiskDistributionFromList(t *testing.T) {
	risks := []models.Risk{
		{Severity: models.LevelLow},
		{Severity: models.LevelLow},
		{Severity: models.LevelHigh},
	}

	d := RiskDistribution(nil, risks)
	assert.Equal(t, models.RiskDistribution{Low: 2, Medium: 0, High: 1, Critical: 0}, d)
	assert.Equal(t, 3, RiskTotal(d))

	bars := RiskBars(d)
	require.Len(t, bars, 4)
	assert.Equal(t, "low", bars[0].Name)
	assert.Equal(t, 66.7, bars[0].Width)
	assert.Equal(t, 33.3, bars[2].Width)
	assert.Equal(t, "#ef4444", bars[3].Color)
}

func TestRiskDistributionPrefersSummary(t *testing.T) {
	summary := &models.RiskDistribution{Critical: 4}
	d := RiskDistribution(summary, []models.Risk{{Severity: models.LevelLow}})
	assert.Equal(t, models.RiskDistribution{Critical: 4}, d)
}

func TestRiskBarsZeroTotal(t *testing.T) {
	for _, b := range RiskBars(models.RiskDistribution{}) {
		assert.Zero(t, b.Width)
		assert.False(t, math.IsNaN(b.Width))
	}
}

func TestVelocity(t *testing.T) {
	points, avg := Velocity(nil)
	assert.Empty(t, points)
	assert.Zero(t, avg)

	series := []models.VelocityPoint{
		{Period: "Week 1", TasksCompleted: 2},
		{Period: "Week 2", TasksCompleted: 3},
		{Period: "Week 3", TasksCompleted: 5},
	}
	points, avg = Velocity(series)
	assert.InDelta(t, 10.0/3, avg, 1e-12)
	for _, p := range points {
		assert.Equal(t, avg, p.Average)
	}
	assert.Zero(t, series[0].Average, "input untouched")
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(0, 0))
	assert.Equal(t, 0.0, CompletionRate(3, -1))
	assert.Equal(t, 33.3, CompletionRate(1, 3))
	assert.Equal(t, 100.0, CompletionRate(4, 4))
}

func TestRiskScore(t *testing.T) {
	assert.Equal(t, 1, RiskScore(models.LevelLow, models.LevelLow))
	assert.Equal(t, 12, RiskScore(models.LevelHigh, models.LevelCritical))
	assert.Equal(t, 4, RiskScore(models.LevelMedium, models.LevelMedium))
	assert.Equal(t, 6, RiskScore(models.Level("unknown"), models.LevelHigh))

	for _, p := range []models.Level{models.LevelLow, models.LevelMedium, models.LevelHigh} {
		for _, i := range models.Levels {
			s := RiskScore(p, i)
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, MaxRiskScore)
		}
	}
}

func TestAverageRiskScore(t *testing.T) {
	risks := []models.Risk{
		{Probability: models.LevelHigh, Impact: models.LevelCritical, Status: models.RiskStatusOpen},
		{Probability: models.LevelLow, Impact: models.LevelLow, Status: models.RiskStatusOpen},
		{Probability: models.LevelHigh, Impact: models.LevelHigh, Status: models.RiskStatusClosed},
	}
	assert.Equal(t, 13, TotalRiskPoints(risks))
	assert.Equal(t, 54.17, AverageRiskScore(risks))
	assert.Zero(t, AverageRiskScore(nil))
}

func TestAverageLeadTime(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{Status: models.TaskStatusDone, CreatedAt: models.NewTimestamp(base), UpdatedAt: models.NewTimestamp(base.Add(48 * time.Hour))},
		{Status: models.TaskStatusDone, CreatedAt: models.NewTimestamp(base), UpdatedAt: models.NewTimestamp(base.Add(24 * time.Hour))},
		{Status: models.TaskStatusTodo, CreatedAt: models.NewTimestamp(base), UpdatedAt: models.NewTimestamp(base.Add(240 * time.Hour))},
	}
	assert.Equal(t, 1.5, AverageLeadTime(tasks))
	assert.Zero(t, AverageLeadTime(nil))
}

func TestBurndownSortsAndClamps(t *testing.T) {
	d1 := models.NewTimestamp(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	d0 := models.NewTimestamp(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	in := []models.BurndownPoint{
		{Date: d1, RemainingTasks: -1, CompletedTasks: 4},
		{Date: d0, RemainingTasks: 5, CompletedTasks: 0},
	}

	out := Burndown(in)
	require.Len(t, out, 2)
	assert.True(t, out[0].Date.Equal(d0.Time))
	assert.Equal(t, 0, out[1].RemainingTasks)
	assert.Equal(t, -1, in[0].RemainingTasks, "input untouched")
}

func TestBuildSnapshotPrefersBackend(t *testing.T) {
	rate := 40.0
	resp := &models.AnalyticsResponse{
		Totals:           models.AnalyticsTotals{TotalTasks: 10, CompletedTasks: 5, CompletionRate: &rate},
		RiskDistribution: &models.RiskDistribution{High: 2},
		VelocityData:     []models.VelocityPoint{{Period: "Week 1", TasksCompleted: 4}},
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s := BuildSnapshot(resp, tasksWith("done"), nil, now)
	assert.Equal(t, 40.0, s.CompletionRate)
	assert.Equal(t, 4.0, s.Velocity)
	assert.Equal(t, 2, s.RiskDistribution.High)
	assert.Equal(t, 100.0, s.RiskBars[2].Width)
	assert.Equal(t, now, s.GeneratedAt)
}

func TestBuildSnapshotRoundsBackendFigures(t *testing.T) {
	rate, velocity, lead := 33.333, 7.0/3, 1.2345
	resp := &models.AnalyticsResponse{
		Totals: models.AnalyticsTotals{CompletionRate: &rate, Velocity: &velocity, AverageLeadTime: &lead},
	}

	s := BuildSnapshot(resp, nil, nil, time.Now())
	assert.Equal(t, 33.3, s.CompletionRate)
	assert.Equal(t, velocity, s.Velocity)
	assert.Equal(t, 1.23, s.AverageLeadTime)
}

func TestBuildSnapshotWithoutBackend(t *testing.T) {
	risks := []models.Risk{{Severity: models.LevelLow, Status: models.RiskStatusOpen, Probability: models.LevelLow, Impact: models.LevelLow}}

	s := BuildSnapshot(nil, tasksWith("done", "todo"), risks, time.Now())
	assert.Equal(t, 2, s.Totals.TotalTasks)
	assert.Equal(t, 1, s.Totals.CompletedTasks)
	assert.Equal(t, 50.0, s.CompletionRate)
	assert.Equal(t, 1, s.Totals.OpenRisks)
	assert.Equal(t, 8.33, s.RiskScore)
	assert.Zero(t, s.Velocity)
	assert.NotNil(t, s.VelocitySeries)
}
