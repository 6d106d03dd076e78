package analytics

import "github.com/coachboard/coachboard-client/internal/models"

// MaxRiskScore is high probability times critical impact
const MaxRiskScore = 12

// Unrecognized levels count as medium, matching the backend's scoring.
const defaultWeight = 2

var probabilityWeights = map[models.Level]int{
	models.LevelLow:    1,
	models.LevelMedium: 2,
	models.LevelHigh:   3,
}

var impactWeights = map[models.Level]int{
	models.LevelLow:      1,
	models.LevelMedium:   2,
	models.LevelHigh:     3,
	models.LevelCritical: 4,
}

// RiskScore is probability weight times impact weight, within 1..12.
func RiskScore(probability, impact models.Level) int {
	p, ok := probabilityWeights[probability]
	if !ok {
		p = defaultWeight
	}
	i, ok := impactWeights[impact]
	if !ok {
		i = defaultWeight
	}
	return p * i
}

func openRisks(risks []models.Risk) []models.Risk {
	open := make([]models.Risk, 0, len(risks))
	for _, r := range risks {
		if r.Status == models.RiskStatusOpen {
			open = append(open, r)
		}
	}
	return open
}

// TotalRiskPoints sums the scores of open risks.
func TotalRiskPoints(risks []models.Risk) int {
	total := 0
	for _, r := range openRisks(risks) {
		total += RiskScore(r.Probability, r.Impact)
	}
	return total
}

// AverageRiskScore is the mean open-risk score scaled to 0..100.
func AverageRiskScore(risks []models.Risk) float64 {
	open := openRisks(risks)
	if len(open) == 0 {
		return 0
	}
	mean := float64(TotalRiskPoints(open)) / float64(len(open))
	return round(mean/MaxRiskScore*100, 2)
}
