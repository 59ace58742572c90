package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"momentumAPI/internal/apperr"
	"momentumAPI/internal/store"
	"momentumAPI/internal/types/group"
	"momentumAPI/internal/types/leaderboard"
	"momentumAPI/internal/types/streak"
)

type LeaderboardService struct {
	store store.Store
}

func NewLeaderboardService(st store.Store) *LeaderboardService {
	return &LeaderboardService{store: st}
}

// Leaderboard ranks every member of a group by total momentum. A non-nil
// activity overrides the group's stored filter; matching is trimmed and
// case-insensitive. Members with no matching streaks stay on the board
// with zero aggregates, and ties keep member order.
func (s *LeaderboardService) Leaderboard(ctx context.Context, groupID string, activity *string, today time.Time) ([]*leaderboard.Entry, error) {
	activityFilter, err := s.resolveActivity(ctx, groupID, activity)
	if err != nil {
		return nil, err
	}

	memberDocs, err := s.store.List(ctx, store.MembersCollection, store.Eq(group.FieldGroupID, groupID))
	if err != nil {
		return nil, apperr.Store("listing members", err)
	}

	entries := []*leaderboard.Entry{}
	byUser := map[string]*leaderboard.Entry{}
	userIDs := []string{}
	for _, doc := range memberDocs {
		m, err := group.MembershipFromDocument(doc)
		if err != nil {
			return nil, apperr.Validationf("membership %s: %v", doc.ID, err)
		}
		entry := &leaderboard.Entry{
			UserID:      m.UserID,
			DisplayName: m.UserName,
			Streaks:     []*streak.Streak{},
		}
		entries = append(entries, entry)
		byUser[m.UserID] = entry
		userIDs = append(userIDs, m.UserID)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	streakDocs, err := s.store.List(ctx, store.StreaksCollection, store.In(streak.FieldUserID, userIDs...))
	if err != nil {
		return nil, apperr.Store("listing member streaks", err)
	}

	records := make([]*streak.Streak, 0, len(streakDocs))
	for _, doc := range streakDocs {
		r, err := streak.FromDocument(doc)
		if err != nil {
			return nil, apperr.Validationf("streak %s: %v", doc.ID, err)
		}
		records = append(records, r)
	}

	for _, r := range CalculateCurrentStreaks(records, today) {
		if activityFilter != "" && !strings.EqualFold(strings.TrimSpace(r.Name), activityFilter) {
			continue
		}
		entry, ok := byUser[r.UserID]
		if !ok {
			continue
		}

		entry.StreaksConsidered++
		entry.TotalMomentum += r.CurrentStreak
		if r.CurrentStreak > entry.PeakStreak {
			entry.PeakStreak = r.CurrentStreak
		}
		entry.Streaks = append(entry.Streaks, r)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalMomentum > entries[j].TotalMomentum
	})
	for i, entry := range entries {
		entry.Rank = i + 1
	}
	return entries, nil
}

func (s *LeaderboardService) resolveActivity(ctx context.Context, groupID string, override *string) (string, error) {
	if override != nil {
		return strings.TrimSpace(*override), nil
	}

	doc, err := s.store.Get(ctx, store.GroupsCollection, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.NotFoundf("group %s", groupID)
		}
		return "", apperr.Store("fetching group", err)
	}

	g, err := group.FromDocument(doc)
	if err != nil {
		return "", apperr.Validationf("group %s: %v", doc.ID, err)
	}
	return strings.TrimSpace(g.Activity), nil
}
