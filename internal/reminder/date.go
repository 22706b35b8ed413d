package reminder

import (
	"errors"
	"fmt"
	"time"
)

// YearCorrection is subtracted from a reminder date that lands in the
// future. It is 52 weeks, not a calendar year, and drifts by a day or two
// per step; reminders are never more than a few weeks old in practice.
const YearCorrection = 52 * 7 * 24 * time.Hour

// ErrInvalidDate is returned when a month/day pair does not exist in the
// borrowed year.
var ErrInvalidDate = errors.New("invalid reminder date")

// ReminderDate builds the date a reminder is about. Subjects carry no year,
// so the year of the goal's latest datapoint is borrowed; while the result
// is later than now it is moved back by YearCorrection. The returned date is
// midnight in now's location and never after now.
func ReminderDate(dataDate time.Time, month time.Month, day int, now time.Time) (time.Time, error) {
	if err := CheckMonthDay(month, day); err != nil {
		return time.Time{}, err
	}

	candidate := time.Date(dataDate.Year(), month, day, 0, 0, 0, 0, now.Location())
	if candidate.Month() != month || candidate.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %02d/%02d in %d", ErrInvalidDate, int(month), day, dataDate.Year())
	}

	for candidate.After(now) {
		candidate = candidate.AddDate(0, 0, -int(YearCorrection/(24*time.Hour)))
	}
	return candidate, nil
}

// CheckMonthDay returns ErrInvalidDate unless month/day exists in at least
// one year, so 02/29 passes and 02/30 does not.
func CheckMonthDay(month time.Month, day int) error {
	if month >= time.January && month <= time.December && day >= 1 {
		// 2000 is a leap year.
		if t := time.Date(2000, month, day, 0, 0, 0, 0, time.UTC); t.Month() == month {
			return nil
		}
	}
	return fmt.Errorf("%w: %02d/%02d", ErrInvalidDate, int(month), day)
}

// ShouldArchive reports whether the goal has data on or after the reminder
// date. Only calendar dates are compared; equal dates archive.
func ShouldArchive(dataDate, reminderDate time.Time) bool {
	return !civilDate(dataDate).Before(civilDate(reminderDate))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
