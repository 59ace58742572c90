package leaderboard

import "momentumAPI/internal/types/streak"

// Entry is one member's aggregate on a group leaderboard. Streaks carries
// the live-computed records behind the numbers for drill-down.
type Entry struct {
	UserID            string           `json:"user_id"`
	DisplayName       string           `json:"display_name"`
	StreaksConsidered int              `json:"streaks_considered"`
	TotalMomentum     int              `json:"total_momentum"`
	PeakStreak        int              `json:"peak_streak"`
	Rank              int              `json:"rank"`
	Streaks           []*streak.Streak `json:"streaks"`
}
