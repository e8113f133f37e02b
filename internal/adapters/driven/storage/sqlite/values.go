package sqlite

import (
	"database/sql"
	"time"
)

// Times are stored as RFC 3339 text in UTC; NULL is the zero time.

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseTime yields the zero time for empty or malformed text.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseNullableTime(s sql.NullString) time.Time { return parseTime(s.String) }

// nullString stores "" as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
