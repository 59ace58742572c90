package services

import (
	"context"
	"testing"

	"momentumAPI/internal/store"
	"momentumAPI/internal/types/streak"
)

// seedStreak writes a streak document directly, bypassing the service, so
// tests control the reset dates.
func seedStreak(t *testing.T, st store.Store, userID, name, lastReset string) {
	t.Helper()
	history, err := streak.EncodeHistory(nil)
	if err != nil {
		t.Fatalf("encoding history: %v", err)
	}
	_, err = st.Create(context.Background(), store.StreaksCollection, "", map[string]any{
		streak.FieldUserID:        userID,
		streak.FieldName:          name,
		streak.FieldCreatedAt:     lastReset,
		streak.FieldLastResetDate: lastReset,
		streak.FieldLongestStreak: 0,
		streak.FieldBreakHistory:  history,
	})
	if err != nil {
		t.Fatalf("seeding streak: %v", err)
	}
}

func TestLeaderboardAppliesActivityFilter(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()
	today := mustDay(t, "2026-08-31")

	arena, err := groups.CreateGroup(ctx, alice, "Runners", "Running")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// 10 days of running, 3 of reading. Only running may count.
	seedStreak(t, st, alice.ID, "Running", "2026-08-21")
	seedStreak(t, st, alice.ID, "Reading", "2026-08-28")

	entries, err := boards.Leaderboard(ctx, arena.ID, nil, today)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}

	e := entries[0]
	if e.StreaksConsidered != 1 {
		t.Errorf("expected 1 matching streak, got %d", e.StreaksConsidered)
	}
	if e.TotalMomentum != 10 {
		t.Errorf("expected momentum 10, got %d", e.TotalMomentum)
	}
	if e.PeakStreak != 10 {
		t.Errorf("expected peak 10, got %d", e.PeakStreak)
	}
	if len(e.Streaks) != 1 || e.Streaks[0].Name != "Running" {
		t.Errorf("expected only the running streak in the detail list, got %+v", e.Streaks)
	}
}

func TestLeaderboardFilterMatchingIsLenient(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()

	arena, err := groups.CreateGroup(ctx, alice, "Runners", "running")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	seedStreak(t, st, alice.ID, "  RUNNING ", "2026-08-21")

	entries, err := boards.Leaderboard(ctx, arena.ID, nil, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if entries[0].StreaksConsidered != 1 {
		t.Errorf("case and whitespace must not matter, got %d matches", entries[0].StreaksConsidered)
	}
}

func TestLeaderboardIncludesZeroAggregateMembers(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()

	arena, err := groups.CreateGroup(ctx, alice, "Runners", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := groups.JoinGroup(ctx, bob, arena.InviteCode); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	seedStreak(t, st, alice.ID, "Running", "2026-08-21")

	entries, err := boards.Leaderboard(ctx, arena.ID, nil, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("every member must appear, got %d entries", len(entries))
	}

	last := entries[1]
	if last.UserID != bob.ID {
		t.Fatalf("expected bob ranked last, got %s", last.UserID)
	}
	if last.StreaksConsidered != 0 || last.TotalMomentum != 0 || last.PeakStreak != 0 {
		t.Errorf("expected zero aggregates, got %+v", last)
	}
	if last.DisplayName != "Bob" {
		t.Errorf("expected the denormalized display name, got %q", last.DisplayName)
	}
}

func TestLeaderboardRanksByMomentum(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()

	arena, err := groups.CreateGroup(ctx, alice, "Everything", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := groups.JoinGroup(ctx, bob, arena.InviteCode); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	seedStreak(t, st, alice.ID, "Running", "2026-08-29") // 2 days
	seedStreak(t, st, bob.ID, "Reading", "2026-08-21")   // 10 days
	seedStreak(t, st, bob.ID, "Guitar", "2026-08-28")    // 3 days

	entries, err := boards.Leaderboard(ctx, arena.ID, nil, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if entries[0].UserID != bob.ID || entries[0].TotalMomentum != 13 {
		t.Errorf("expected bob first with 13, got %s with %d", entries[0].UserID, entries[0].TotalMomentum)
	}
	if entries[0].PeakStreak != 10 {
		t.Errorf("expected peak 10, got %d", entries[0].PeakStreak)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("expected ranks 1 and 2, got %d and %d", entries[0].Rank, entries[1].Rank)
	}

	total := 0
	for _, e := range entries {
		total += e.StreaksConsidered
	}
	if total != 3 {
		t.Errorf("streaksConsidered must sum to the matching records, got %d", total)
	}
}

func TestLeaderboardActivityOverride(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()

	arena, err := groups.CreateGroup(ctx, alice, "Runners", "Running")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	seedStreak(t, st, alice.ID, "Running", "2026-08-21")
	seedStreak(t, st, alice.ID, "Reading", "2026-08-28")

	override := "Reading"
	entries, err := boards.Leaderboard(ctx, arena.ID, &override, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if entries[0].TotalMomentum != 3 {
		t.Errorf("override must replace the stored filter, got momentum %d", entries[0].TotalMomentum)
	}

	// An explicit empty override disables filtering entirely.
	none := ""
	entries, err = boards.Leaderboard(ctx, arena.ID, &none, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if entries[0].StreaksConsidered != 2 {
		t.Errorf("empty override must count all streaks, got %d", entries[0].StreaksConsidered)
	}
}

func TestLeaderboardEmptyGroup(t *testing.T) {
	st := store.NewMemoryStore()
	groups := NewGroupService(st)
	boards := NewLeaderboardService(st)
	ctx := context.Background()

	arena, err := groups.CreateGroup(ctx, alice, "Ghost town", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := groups.LeaveGroup(ctx, alice.ID, arena.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}

	entries, err := boards.Leaderboard(ctx, arena.ID, nil, mustDay(t, "2026-08-31"))
	if err != nil {
		t.Fatalf("an empty group is not an error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty board, got %d entries", len(entries))
	}
}
