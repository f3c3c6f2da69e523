// Package schedule holds the pure calendar logic for training plans:
// date normalization, weekday labels, plan duration, and validation of
// candidate scheduled days against a plan's date range. It never touches
// the store; the service layer persists whatever it accepts.
package schedule

import (
	"errors"
	"time"

	"trainup/training-app/internal/domain"
)

var (
	ErrOutOfRange    = errors.New("scheduled date is outside the plan's date range")
	ErrDuplicateDate = errors.New("a session is already scheduled on this date")
)

// dayLabels are the seven fixed weekday display labels, indexed by time.Weekday.
var dayLabels = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// NormalizeDate truncates t to UTC midnight. All scheduled-day dates are
// stored and compared in this form so that two timestamps on the same
// calendar day always collide.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date (UTC).
func SameDate(a, b time.Time) bool {
	return NormalizeDate(a).Equal(NormalizeDate(b))
}

// DayLabel returns the fixed weekday label for a calendar date.
func DayLabel(t time.Time) string {
	return dayLabels[NormalizeDate(t).Weekday()]
}

// DurationWeeks returns the plan length in whole weeks, ceiling-rounded
// from the date span: ceil(days_between / 7). A same-day range yields 0.
// This is presentation metadata, never used in scheduling validation.
func DurationWeeks(start, end time.Time) int {
	days := int(NormalizeDate(end).Sub(NormalizeDate(start)).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

// InRange reports whether date falls within [plan.StartDate, plan.EndDate],
// boundaries inclusive, comparing calendar dates only.
func InRange(plan *domain.Plan, date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(NormalizeDate(plan.StartDate)) && !d.After(NormalizeDate(plan.EndDate))
}

// NewScheduledDay validates a candidate date against the plan's range and
// the already-scheduled days, and returns an unsaved ScheduledDay draft.
// The display name is ignored for duplicate detection: one session per
// calendar date per plan, full stop. An empty name defaults to the
// weekday label.
func NewScheduledDay(plan *domain.Plan, existing []domain.ScheduledDay, date time.Time, name string) (*domain.ScheduledDay, error) {
	d := NormalizeDate(date)
	if !InRange(plan, d) {
		return nil, ErrOutOfRange
	}
	for i := range existing {
		if SameDate(existing[i].Date, d) {
			return nil, ErrDuplicateDate
		}
	}

	label := DayLabel(d)
	if name == "" {
		name = label
	}
	return &domain.ScheduledDay{
		PlanID:    plan.ID,
		Date:      d,
		DayOfWeek: label,
		Name:      name,
	}, nil
}
