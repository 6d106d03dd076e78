package models

// AnalyticsTotals are the dashboard counters computed by the backend.
// The derived rates are optional; older backends only send the counts.
type AnalyticsTotals struct {
	TotalTasks      int      `json:"total_tasks"`
	CompletedTasks  int      `json:"completed_tasks"`
	TotalRisks      int      `json:"total_risks"`
	OpenRisks       int      `json:"open_risks"`
	AIRequestsCount int      `json:"ai_requests_count"`
	CompletionRate  *float64 `json:"completion_rate,omitempty"`
	Velocity        *float64 `json:"velocity,omitempty"`
	AverageLeadTime *float64 `json:"average_lead_time,omitempty"`
	RiskScore       *float64 `json:"risk_score,omitempty"`
}

type BurndownPoint struct {
	Date           Timestamp `json:"date"`
	RemainingTasks int       `json:"remaining_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
}

type BurndownChart struct {
	DataPoints []BurndownPoint `json:"data_points"`
}

// RiskDistribution counts risks per severity bucket
type RiskDistribution struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// VelocityPoint is the completed-task count for one period
type VelocityPoint struct {
	Period         string  `json:"week"`
	TasksCompleted int     `json:"tasks_completed"`
	Average        float64 `json:"average"`
}

type AnalyticsResponse struct {
	Totals           AnalyticsTotals   `json:"totals"`
	Burndown         BurndownChart     `json:"burndown"`
	RiskDistribution *RiskDistribution `json:"risk_distribution,omitempty"`
	VelocityData     []VelocityPoint   `json:"velocity_data"`
}
