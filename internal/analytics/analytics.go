// Package analytics turns fetched collections and the backend summary into
// chart-ready shapes. Every function is total: empty input and zero divisors
// yield documented defaults, never NaN.
package analytics

import (
	"math"

	"github.com/coachboard/coachboard-client/internal/models"
)

// Bucket is one slice of a distribution chart
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Bar is a bucket with its proportional width in percent.
type Bar struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

var taskStatusColors = map[models.TaskStatus]string{
	models.TaskStatusTodo:       "#6b7280",
	models.TaskStatusInProgress: "#3b82f6",
	models.TaskStatusDone:       "#10b981",
	models.TaskStatusBlocked:    "#ef4444",
}

var levelColors = map[models.Level]string{
	models.LevelLow:      "#10b981",
	models.LevelMedium:   "#f59e0b",
	models.LevelHigh:     "#f97316",
	models.LevelCritical: "#ef4444",
}

// TaskDistribution counts tasks per status in board order. Unknown statuses
// are left out of every bucket.
func TaskDistribution(tasks []models.Task) []Bucket {
	counts := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, t := range tasks {
		if t.Status.Valid() {
			counts[t.Status]++
		}
	}

	buckets := make([]Bucket, 0, len(models.TaskStatuses))
	for _, s := range models.TaskStatuses {
		buckets = append(buckets, Bucket{Name: string(s), Count: counts[s], Color: taskStatusColors[s]})
	}
	return buckets
}

// TaskPercentages maps each bucket name to its whole-number share.
func TaskPercentages(buckets []Bucket) map[string]int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		if total == 0 {
			out[b.Name] = 0
			continue
		}
		out[b.Name] = int(math.Round(float64(b.Count) / float64(total) * 100))
	}
	return out
}

// RiskDistribution returns summary when the backend supplied one, otherwise
// it groups risks by severity.
func RiskDistribution(summary *models.RiskDistribution, risks []models.Risk) models.RiskDistribution {
	if summary != nil {
		return *summary
	}
	var d models.RiskDistribution
	for _, r := range risks {
		switch r.Severity {
		case models.LevelLow:
			d.Low++
		case models.LevelMedium:
			d.Medium++
		case models.LevelHigh:
			d.High++
		case models.LevelCritical:
			d.Critical++
		}
	}
	return d
}

// RiskTotal is the divisor used for bar widths.
func RiskTotal(d models.RiskDistribution) int {
	return d.Low + d.Medium + d.High + d.Critical
}

// RiskBars lays out the distribution low to critical. With no risks every width is 0.
func RiskBars(d models.RiskDistribution) []Bar {
	counts := map[models.Level]int{
		models.LevelLow:      d.Low,
		models.LevelMedium:   d.Medium,
		models.LevelHigh:     d.High,
		models.LevelCritical: d.Critical,
	}
	total := RiskTotal(d)

	bars := make([]Bar, 0, len(models.Levels))
	for _, l := range models.Levels {
		bar := Bar{Name: string(l), Count: counts[l], Color: levelColors[l]}
		if total > 0 {
			bar.Width = round(float64(bar.Count)/float64(total)*100, 1)
		}
		bars = append(bars, bar)
	}
	return bars
}

// Velocity copies series with every point's Average set to the exact series
// mean. Rounding is left to the renderer.
func Velocity(series []models.VelocityPoint) ([]models.VelocityPoint, float64) {
	out := make([]models.VelocityPoint, len(series))
	if len(series) == 0 {
		return out, 0
	}
	sum := 0
	for _, p := range series {
		sum += p.TasksCompleted
	}
	avg := float64(sum) / float64(len(series))
	for i, p := range series {
		p.Average = avg
		out[i] = p
	}
	return out, avg
}

// CompletionRate is completed/total as a percentage with one decimal.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round(float64(completed)/float64(total)*100, 1)
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
