package streak

import (
	"encoding/json"
	"fmt"
	"time"

	"momentumAPI/internal/store"
)

// DayLayout is the calendar-day format used everywhere: dates are pure
// days in UTC, never carrying a time of day.
const DayLayout = "2006-01-02"

func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// TruncateDay drops the time-of-day component, normalized to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BreakEvent is one entry in a streak's break history, newest first.
// StreakAtBreak is the day count captured just before the reset.
type BreakEvent struct {
	Date          string `json:"date"`
	StreakAtBreak int    `json:"streakAtBreak"`
}

type Streak struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Name          string       `json:"name"`
	CreatedAt     string       `json:"created_at"`
	LastResetDate string       `json:"last_reset_date"`
	CurrentStreak int          `json:"current_streak"`
	LongestStreak int          `json:"longest_streak"`
	BreakHistory  []BreakEvent `json:"break_history"`
	Milestone     int          `json:"milestone"`
}

// Document field names, matching the stored schema. The break history is
// persisted as a JSON-encoded string inside a single field; it only exists
// in that form at the store boundary.
const (
	FieldUserID        = "userId"
	FieldName          = "name"
	FieldCreatedAt     = "createdAt"
	FieldLastResetDate = "lastResetDate"
	FieldLongestStreak = "longestStreak"
	FieldBreakHistory  = "brokenHistory"
)

// FromDocument decodes a stored streak document. Malformed documents are
// an error, never a silently defaulted record.
func FromDocument(doc store.Document) (*Streak, error) {
	s := &Streak{ID: doc.ID}
	var err error

	if s.UserID, err = stringField(doc.Fields, FieldUserID); err != nil {
		return nil, err
	}
	if s.Name, err = stringField(doc.Fields, FieldName); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = stringField(doc.Fields, FieldCreatedAt); err != nil {
		return nil, err
	}
	if _, err = ParseDay(s.CreatedAt); err != nil {
		return nil, fmt.Errorf("field %s is not a calendar day: %q", FieldCreatedAt, s.CreatedAt)
	}

	// A streak that was never broken may predate the lastResetDate field;
	// the creation date stands in for it.
	s.LastResetDate = optionalString(doc.Fields, FieldLastResetDate)
	if s.LastResetDate == "" {
		s.LastResetDate = s.CreatedAt
	}
	if _, err = ParseDay(s.LastResetDate); err != nil {
		return nil, fmt.Errorf("field %s is not a calendar day: %q", FieldLastResetDate, s.LastResetDate)
	}

	if s.LongestStreak, err = intField(doc.Fields, FieldLongestStreak); err != nil {
		return nil, err
	}

	raw := optionalString(doc.Fields, FieldBreakHistory)
	if raw == "" {
		raw = "[]"
	}
	if err := json.Unmarshal([]byte(raw), &s.BreakHistory); err != nil {
		return nil, fmt.Errorf("field %s holds malformed history: %v", FieldBreakHistory, err)
	}

	return s, nil
}

// EncodeHistory serializes a break history for storage.
func EncodeHistory(history []BreakEvent) (string, error) {
	if history == nil {
		history = []BreakEvent{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("failed to encode break history: %v", err)
	}
	return string(raw), nil
}

func stringField(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("field %s is missing", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", name)
	}
	return s, nil
}

func optionalString(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// intField tolerates the numeric types the backends hand back: Firestore
// decodes integers as int64, jsonb as float64.
func intField(fields map[string]any, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %s is not a number", name)
	}
}
