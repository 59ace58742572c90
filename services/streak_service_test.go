package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"momentumAPI/internal/apperr"
	"momentumAPI/internal/store"
	"momentumAPI/internal/types/streak"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := streak.ParseDay(s)
	if err != nil {
		t.Fatalf("bad day %q: %v", s, err)
	}
	return day
}

func TestCalculateCurrentStreaksIdempotent(t *testing.T) {
	today := mustDay(t, "2026-08-31")
	records := []*streak.Streak{
		{ID: "a", LastResetDate: "2026-08-20", LongestStreak: 3},
		{ID: "b", LastResetDate: "2026-08-31", LongestStreak: 0},
	}

	first := CalculateCurrentStreaks(records, today)
	second := CalculateCurrentStreaks(first, today)

	for i := range first {
		if first[i].CurrentStreak != second[i].CurrentStreak {
			t.Errorf("streak %s: count drifted from %d to %d", first[i].ID, first[i].CurrentStreak, second[i].CurrentStreak)
		}
		if first[i].LongestStreak != second[i].LongestStreak {
			t.Errorf("streak %s: longest drifted from %d to %d", first[i].ID, first[i].LongestStreak, second[i].LongestStreak)
		}
	}
	if first[0].CurrentStreak != 11 {
		t.Errorf("expected 11 days since reset, got %d", first[0].CurrentStreak)
	}
	if records[0].CurrentStreak != 0 {
		t.Errorf("input record was mutated: count %d", records[0].CurrentStreak)
	}
}

func TestCalculateCurrentStreaksClampsFutureReset(t *testing.T) {
	today := mustDay(t, "2026-08-31")
	records := []*streak.Streak{
		{ID: "skewed", LastResetDate: "2026-09-05", LongestStreak: 4},
	}

	live := CalculateCurrentStreaks(records, today)
	if live[0].CurrentStreak != 0 {
		t.Errorf("future reset date must clamp to 0, got %d", live[0].CurrentStreak)
	}
	if live[0].LongestStreak != 4 {
		t.Errorf("longest streak must not change, got %d", live[0].LongestStreak)
	}
}

func TestCalculateCurrentStreaksRaisesLongest(t *testing.T) {
	today := mustDay(t, "2026-08-31")
	records := []*streak.Streak{
		{ID: "a", LastResetDate: "2026-08-01", LongestStreak: 10},
	}

	live := CalculateCurrentStreaks(records, today)
	if live[0].CurrentStreak != 30 {
		t.Fatalf("expected 30 days, got %d", live[0].CurrentStreak)
	}
	if live[0].LongestStreak != 30 {
		t.Errorf("longest must follow a higher live count, got %d", live[0].LongestStreak)
	}
	if live[0].Milestone != 30 {
		t.Errorf("expected the 30-day milestone, got %d", live[0].Milestone)
	}
}

func TestAddActivityRejectsBlankName(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	today := mustDay(t, "2026-08-31")

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.AddActivity(context.Background(), "user_1", name, today)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("name %q: expected validation error, got %v", name, err)
		}
	}
}

func TestAddActivityCreatesRecord(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	today := mustDay(t, "2026-08-31")

	record, err := svc.AddActivity(context.Background(), "user_1", "  Running  ", today)
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	if record.Name != "Running" {
		t.Errorf("expected trimmed name, got %q", record.Name)
	}
	if record.CreatedAt != "2026-08-31" || record.LastResetDate != "2026-08-31" {
		t.Errorf("expected dates to be today, got created %s reset %s", record.CreatedAt, record.LastResetDate)
	}
	if record.CurrentStreak != 0 || record.LongestStreak != 0 {
		t.Errorf("new streak must start at zero, got current %d longest %d", record.CurrentStreak, record.LongestStreak)
	}
	if len(record.BreakHistory) != 0 {
		t.Errorf("new streak must have empty history, got %d events", len(record.BreakHistory))
	}
}

func TestBreakStreakAfterFiveDays(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	ctx := context.Background()
	day0 := mustDay(t, "2026-08-01")
	day5 := mustDay(t, "2026-08-06")

	created, err := svc.AddActivity(ctx, "user_1", "Reading", day0)
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	listed, err := svc.ListStreaks(ctx, "user_1", day5)
	if err != nil {
		t.Fatalf("ListStreaks failed: %v", err)
	}
	if listed[0].CurrentStreak != 5 {
		t.Fatalf("expected live count 5 on day 5, got %d", listed[0].CurrentStreak)
	}

	broken, err := svc.BreakStreak(ctx, "user_1", created.ID, day5)
	if err != nil {
		t.Fatalf("BreakStreak failed: %v", err)
	}

	if broken.CurrentStreak != 0 {
		t.Errorf("live count must be 0 right after a break, got %d", broken.CurrentStreak)
	}
	if broken.LongestStreak != 5 {
		t.Errorf("longest must capture the pre-break count, got %d", broken.LongestStreak)
	}
	if len(broken.BreakHistory) != 1 {
		t.Fatalf("expected one break event, got %d", len(broken.BreakHistory))
	}
	if broken.BreakHistory[0].Date != "2026-08-06" || broken.BreakHistory[0].StreakAtBreak != 5 {
		t.Errorf("unexpected break event %+v", broken.BreakHistory[0])
	}

	// Breaking again the same day prepends a zero-count event and keeps
	// the longest streak.
	again, err := svc.BreakStreak(ctx, "user_1", created.ID, day5)
	if err != nil {
		t.Fatalf("second BreakStreak failed: %v", err)
	}
	if len(again.BreakHistory) != 2 {
		t.Fatalf("expected two break events, got %d", len(again.BreakHistory))
	}
	if again.BreakHistory[0].StreakAtBreak != 0 {
		t.Errorf("expected newest event first with count 0, got %+v", again.BreakHistory[0])
	}
	if again.LongestStreak != 5 {
		t.Errorf("longest must never decrease, got %d", again.LongestStreak)
	}
}

func TestBreakStreakUnknownID(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())

	_, err := svc.BreakStreak(context.Background(), "user_1", "missing", mustDay(t, "2026-08-31"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestBreakStreakHidesForeignRecords(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	ctx := context.Background()
	today := mustDay(t, "2026-08-31")

	record, err := svc.AddActivity(ctx, "owner", "Running", today)
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	_, err = svc.BreakStreak(ctx, "intruder", record.ID, today)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign record must look missing, got %v", err)
	}
}

func TestDeleteActivity(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	ctx := context.Background()
	today := mustDay(t, "2026-08-31")

	record, err := svc.AddActivity(ctx, "user_1", "Running", today)
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	if err := svc.DeleteActivity(ctx, "user_1", record.ID); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}

	listed, err := svc.ListStreaks(ctx, "user_1", today)
	if err != nil {
		t.Fatalf("ListStreaks failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected no streaks after delete, got %d", len(listed))
	}

	err = svc.DeleteActivity(ctx, "user_1", record.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("repeated delete must report not-found, got %v", err)
	}
}

func TestListStreaksSortsByCurrent(t *testing.T) {
	svc := NewStreakService(store.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.AddActivity(ctx, "user_1", "New", mustDay(t, "2026-08-30")); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if _, err := svc.AddActivity(ctx, "user_1", "Old", mustDay(t, "2026-08-01")); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	listed, err := svc.ListStreaks(ctx, "user_1", mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("ListStreaks failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 streaks, got %d", len(listed))
	}
	if listed[0].Name != "Old" || listed[0].CurrentStreak != 30 {
		t.Errorf("expected the older streak first, got %q with %d", listed[0].Name, listed[0].CurrentStreak)
	}
}
