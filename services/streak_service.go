package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"momentumAPI/internal/apperr"
	"momentumAPI/internal/store"
	"momentumAPI/internal/types/streak"
)

// Milestone thresholds, highest first.
var milestones = []int{100, 30, 7}

type StreakService struct {
	store store.Store
}

func NewStreakService(st store.Store) *StreakService {
	return &StreakService{store: st}
}

// daysBetween is the whole-day calendar difference between two
// UTC-normalized days. Negative spans (a reset date in the future, clock
// skew) clamp to zero.
func daysBetween(today, since time.Time) int {
	days := int(today.Sub(since).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// CalculateCurrentStreaks derives the live day count of every record from
// its last reset date. It never mutates its input and is stable under
// repeated application with the same today.
func CalculateCurrentStreaks(records []*streak.Streak, today time.Time) []*streak.Streak {
	today = streak.TruncateDay(today)

	out := make([]*streak.Streak, 0, len(records))
	for _, r := range records {
		live := *r

		lastReset, err := streak.ParseDay(live.LastResetDate)
		if err != nil {
			// Decoding rejects bad dates, so this only guards hand-built
			// records in callers.
			lastReset = today
		}

		live.CurrentStreak = daysBetween(today, lastReset)
		if live.CurrentStreak > live.LongestStreak {
			live.LongestStreak = live.CurrentStreak
		}
		live.Milestone = milestoneFor(live.CurrentStreak)

		out = append(out, &live)
	}
	return out
}

func milestoneFor(count int) int {
	for _, m := range milestones {
		if count >= m {
			return m
		}
	}
	return 0
}

// ListStreaks returns the caller's streaks with live counts computed for
// today, longest first by current count.
func (s *StreakService) ListStreaks(ctx context.Context, userID string, today time.Time) ([]*streak.Streak, error) {
	docs, err := s.store.List(ctx, store.StreaksCollection, store.Eq(streak.FieldUserID, userID))
	if err != nil {
		return nil, apperr.Store("listing streaks", err)
	}

	records := make([]*streak.Streak, 0, len(docs))
	for _, doc := range docs {
		r, err := streak.FromDocument(doc)
		if err != nil {
			return nil, apperr.Validationf("streak %s: %v", doc.ID, err)
		}
		records = append(records, r)
	}

	live := CalculateCurrentStreaks(records, today)
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].CurrentStreak > live[j].CurrentStreak
	})
	return live, nil
}

// AddActivity creates a new streak starting today.
func (s *StreakService) AddActivity(ctx context.Context, userID, name string, today time.Time) (*streak.Streak, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("activity name is required")
	}

	day := streak.FormatDay(streak.TruncateDay(today))
	history, err := streak.EncodeHistory(nil)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	fields := map[string]any{
		streak.FieldUserID:        userID,
		streak.FieldName:          name,
		streak.FieldCreatedAt:     day,
		streak.FieldLastResetDate: day,
		streak.FieldLongestStreak: 0,
		streak.FieldBreakHistory:  history,
	}

	doc, err := s.store.Create(ctx, store.StreaksCollection, "", fields)
	if err != nil {
		return nil, apperr.Store("creating streak", err)
	}

	record, err := streak.FromDocument(doc)
	if err != nil {
		return nil, apperr.Validationf("streak %s: %v", doc.ID, err)
	}
	return CalculateCurrentStreaks([]*streak.Streak{record}, today)[0], nil
}

// BreakStreak resets a streak today, capturing the pre-break count at the
// front of the break history. Concurrent breaks on the same record are
// last-write-wins at the store.
func (s *StreakService) BreakStreak(ctx context.Context, userID, id string, today time.Time) (*streak.Streak, error) {
	record, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	live := CalculateCurrentStreaks([]*streak.Streak{record}, today)[0]
	day := streak.FormatDay(streak.TruncateDay(today))

	newHistory := append(
		[]streak.BreakEvent{{Date: day, StreakAtBreak: live.CurrentStreak}},
		live.BreakHistory...,
	)
	encoded, err := streak.EncodeHistory(newHistory)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	fields := map[string]any{
		streak.FieldLastResetDate: day,
		streak.FieldLongestStreak: live.LongestStreak,
		streak.FieldBreakHistory:  encoded,
	}

	doc, err := s.store.Update(ctx, store.StreaksCollection, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("streak %s", id)
		}
		return nil, apperr.Store("breaking streak", err)
	}

	updated, err := streak.FromDocument(doc)
	if err != nil {
		return nil, apperr.Validationf("streak %s: %v", doc.ID, err)
	}
	return CalculateCurrentStreaks([]*streak.Streak{updated}, today)[0], nil
}

// DeleteActivity removes a streak permanently.
func (s *StreakService) DeleteActivity(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, store.StreaksCollection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFoundf("streak %s", id)
		}
		return apperr.Store("deleting streak", err)
	}
	return nil
}

// getOwned fetches a streak and checks ownership. Records owned by other
// users are reported as missing, not forbidden.
func (s *StreakService) getOwned(ctx context.Context, userID, id string) (*streak.Streak, error) {
	doc, err := s.store.Get(ctx, store.StreaksCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFoundf("streak %s", id)
		}
		return nil, apperr.Store("fetching streak", err)
	}

	record, err := streak.FromDocument(doc)
	if err != nil {
		return nil, apperr.Validationf("streak %s: %v", doc.ID, err)
	}
	if record.UserID != userID {
		return nil, apperr.NotFoundf("streak %s", id)
	}
	return record, nil
}
