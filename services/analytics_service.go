package services

import (
	"math"
	"time"

	"momentumAPI/internal/types/analytics"
	"momentumAPI/internal/types/streak"
)

// DefaultGridDays covers a full year so activity charts render complete.
const DefaultGridDays = 365

// AnalyticsService computes personal statistics from live-computed
// streaks. Pure computation; callers fetch the records.
type AnalyticsService struct{}

func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

func (s *AnalyticsService) Report(streaks []*streak.Streak, today time.Time, gridDays int) *analytics.Report {
	if gridDays <= 0 {
		gridDays = DefaultGridDays
	}
	grid := s.ActivityGrid(streaks, today, gridDays)
	return &analytics.Report{
		Summary: s.Summary(streaks),
		Grid:    grid,
		Weekly:  s.WeeklyStats(grid),
	}
}

func (s *AnalyticsService) Summary(streaks []*streak.Streak) analytics.Summary {
	sum := analytics.Summary{TotalStreaks: len(streaks)}
	for _, r := range streaks {
		if r.CurrentStreak > 0 {
			sum.ActiveStreaks++
		}
		sum.TotalMomentum += r.CurrentStreak
		if r.LongestStreak > sum.PeakMomentum {
			sum.PeakMomentum = r.LongestStreak
		}
	}
	return sum
}

// ActivityGrid reconstructs which of the last n days had at least one
// running streak: current runs count back from today, and each break
// event marks the streakAtBreak days before its date.
func (s *AnalyticsService) ActivityGrid(streaks []*streak.Streak, today time.Time, n int) []analytics.GridDay {
	today = streak.TruncateDay(today)
	active := map[string]int{}

	for _, r := range streaks {
		for i := 0; i < r.CurrentStreak; i++ {
			day := streak.FormatDay(today.AddDate(0, 0, -i))
			active[day]++
		}

		for _, b := range r.BreakHistory {
			breakDay, err := streak.ParseDay(b.Date)
			if err != nil {
				continue
			}
			for i := 1; i <= b.StreakAtBreak; i++ {
				day := streak.FormatDay(breakDay.AddDate(0, 0, -i))
				active[day]++
			}
		}
	}

	grid := make([]analytics.GridDay, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := streak.FormatDay(today.AddDate(0, 0, -i))
		count := active[day]
		grid = append(grid, analytics.GridDay{
			Date:     day,
			Active:   count > 0,
			Momentum: count,
			Level:    gridLevel(count),
		})
	}
	return grid
}

func gridLevel(count int) string {
	switch {
	case count == 0:
		return "none"
	case count == 1:
		return "low"
	case count == 2:
		return "medium"
	default:
		return "high"
	}
}

func (s *AnalyticsService) WeeklyStats(grid []analytics.GridDay) analytics.WeeklyStats {
	current := activeDays(tail(grid, 7))
	previous := activeDays(tail(drop(grid, 7), 7))

	change := 0
	switch {
	case previous > 0:
		change = int(math.Round(float64(current-previous) / float64(previous) * 100))
	case current > 0:
		change = 100
	}
	return analytics.WeeklyStats{ActiveDays: current, ChangePercent: change}
}

func activeDays(days []analytics.GridDay) int {
	n := 0
	for _, d := range days {
		if d.Active {
			n++
		}
	}
	return n
}

// tail returns the last n elements.
func tail(grid []analytics.GridDay, n int) []analytics.GridDay {
	if len(grid) <= n {
		return grid
	}
	return grid[len(grid)-n:]
}

// drop returns the slice without its last n elements.
func drop(grid []analytics.GridDay, n int) []analytics.GridDay {
	if len(grid) <= n {
		return nil
	}
	return grid[:len(grid)-n]
}
