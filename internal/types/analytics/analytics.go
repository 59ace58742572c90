package analytics

// Summary holds the headline numbers across one user's streaks.
type Summary struct {
	TotalStreaks  int `json:"total_streaks"`
	ActiveStreaks int `json:"active_streaks"`
	TotalMomentum int `json:"total_momentum"`
	PeakMomentum  int `json:"peak_momentum"`
}

// GridDay is one cell of the activity grid, oldest first.
type GridDay struct {
	Date     string `json:"date"`
	Active   bool   `json:"active"`
	Momentum int    `json:"momentum"`
	Level    string `json:"level"`
}

// WeeklyStats compares activity over the last seven grid days with the
// seven before them.
type WeeklyStats struct {
	ActiveDays    int `json:"active_days"`
	ChangePercent int `json:"change_percent"`
}

type Report struct {
	Summary Summary     `json:"summary"`
	Grid    []GridDay   `json:"grid"`
	Weekly  WeeklyStats `json:"weekly"`
}
