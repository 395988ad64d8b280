package domain

// PlayerStats are the vendor's engagement statistics for the player.
type PlayerStats struct {
	AvgSessionLengthMinutes float64 `json:"avgSessionLengthMinutes"`
	DaysSinceLastPlayed     int     `json:"daysSinceLastPlayed"`
	NumberOfPurchases       int     `json:"numberOfPurchases"`
	NumberOfSessions        int     `json:"numberOfSessions"`
	SessionPercentile       float64 `json:"sessionPercentile"`
	SpendPercentile         float64 `json:"spendPercentile"`
	ChurnProbability        float64 `json:"churnProbability"`
	HighSpenderProbability  float64 `json:"highSpenderProbability"`
}
