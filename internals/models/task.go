package models

import (
	"strings"
	"time"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// DeadlineFormat is the wire and storage format for task deadlines.
const DeadlineFormat = "2006-01-02"

type Task struct {
	Id          int64      `db:"id"`
	Content     string     `db:"content"`
	IsCompleted bool       `db:"is_completed"`
	Priority    string     `db:"priority"`
	Deadline    *time.Time `db:"deadline"`
	UserId      int64      `db:"user_id"`
}

// NormalizePriority maps form input to one of the three known levels.
// Anything unrecognized falls back to Medium, the column default.
func NormalizePriority(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// ParseDeadline parses a YYYY-MM-DD form value. Empty input, a malformed
// string, or an impossible calendar date all mean "no deadline" — adding a
// task never fails on its deadline field.
func ParseDeadline(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DeadlineFormat, s)
	if err != nil {
		return nil
	}
	return &t
}
