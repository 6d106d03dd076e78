package analytics

import (
	"sort"
	"time"

	"github.com/coachboard/coachboard-client/internal/models"
)

// Snapshot is the full dashboard aggregate. It is rebuilt on every fetch.
type Snapshot struct {
	GeneratedAt      time.Time               `json:"generated_at"`
	Totals           models.AnalyticsTotals  `json:"totals"`
	CompletionRate   float64                 `json:"completion_rate"`
	Velocity         float64                 `json:"velocity"`
	AverageLeadTime  float64                 `json:"average_lead_time"`
	RiskScore        float64                 `json:"risk_score"`
	TotalRiskPoints  int                     `json:"total_risk_points"`
	TaskDistribution []Bucket                `json:"task_distribution"`
	RiskDistribution models.RiskDistribution `json:"risk_distribution"`
	RiskBars         []Bar                   `json:"risk_bars"`
	VelocitySeries   []models.VelocityPoint  `json:"velocity_series"`
	Burndown         []models.BurndownPoint  `json:"burndown"`
}

// AverageLeadTime is the mean number of days from creation to the last
// update across done tasks, with two decimals.
func AverageLeadTime(tasks []models.Task) float64 {
	var sum float64
	n := 0
	for _, t := range tasks {
		if t.Status != models.TaskStatusDone || t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
			continue
		}
		sum += t.UpdatedAt.Sub(t.CreatedAt.Time).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return round(sum/float64(n), 2)
}

// Burndown returns a date-ordered copy with negative counts clamped to zero.
func Burndown(points []models.BurndownPoint) []models.BurndownPoint {
	out := make([]models.BurndownPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	for i := range out {
		out[i].RemainingTasks = max(out[i].RemainingTasks, 0)
		out[i].CompletedTasks = max(out[i].CompletedTasks, 0)
	}
	return out
}

// BuildSnapshot merges the backend summary (which may be nil) with the raw
// collections. Backend-computed figures win when present.
func BuildSnapshot(resp *models.AnalyticsResponse, tasks []models.Task, risks []models.Risk, now time.Time) Snapshot {
	var src models.AnalyticsResponse
	if resp != nil {
		src = *resp
	}

	totals := src.Totals
	if resp == nil {
		totals = models.AnalyticsTotals{
			TotalTasks: len(tasks),
			TotalRisks: len(risks),
		}
		for _, t := range tasks {
			if t.Status == models.TaskStatusDone {
				totals.CompletedTasks++
			}
		}
		totals.OpenRisks = len(openRisks(risks))
	}

	series, seriesAvg := Velocity(src.VelocityData)
	dist := RiskDistribution(src.RiskDistribution, risks)

	s := Snapshot{
		GeneratedAt:      now.UTC(),
		Totals:           totals,
		CompletionRate:   round(pick(totals.CompletionRate, CompletionRate(totals.CompletedTasks, totals.TotalTasks)), 1),
		Velocity:         pick(totals.Velocity, seriesAvg),
		AverageLeadTime:  round(pick(totals.AverageLeadTime, AverageLeadTime(tasks)), 2),
		RiskScore:        round(pick(totals.RiskScore, AverageRiskScore(risks)), 2),
		TotalRiskPoints:  TotalRiskPoints(risks),
		TaskDistribution: TaskDistribution(tasks),
		RiskDistribution: dist,
		RiskBars:         RiskBars(dist),
		VelocitySeries:   series,
		Burndown:         Burndown(src.Burndown.DataPoints),
	}
	return s
}

func pick(backend *float64, computed float64) float64 {
	if backend != nil {
		return *backend
	}
	return computed
}
