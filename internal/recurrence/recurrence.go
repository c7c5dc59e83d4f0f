// Package recurrence expands a recurring-transaction rule into the concrete
// dates it occurs on.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// MaxOccurrences bounds a single expansion.
const MaxOccurrences = 1200

// Frequencies understood by StepMonths.
const (
	Monthly   = "monthly"
	Quarterly = "quarterly"
	Yearly    = "yearly"
)

// ErrInvalidRule is returned for rules that cannot be expanded.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule is the date part of a recurring transaction.
type Rule struct {
	Start      time.Time
	End        time.Time
	Frequency  string
	DayOfMonth int
}

// StepMonths returns the number of calendar months between occurrences.
func StepMonths(frequency string) (int, error) {
	switch frequency {
	case Monthly:
		return 1, nil
	case Quarterly:
		return 3, nil
	case Yearly:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, frequency)
	}
}

// Expand returns the occurrences of r, ascending, as UTC midnight dates. The
// k-th cursor is Start advanced by k steps, always computed from Start with
// the day clamped to the target month. An occurrence is day_of_month in the
// cursor's month and is kept only when it falls within [cursor, End].
func Expand(r Rule) ([]time.Time, error) {
	step, err := StepMonths(r.Frequency)
	if err != nil {
		return nil, err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return nil, fmt.Errorf("%w: day_of_month %d out of range 1..31", ErrInvalidRule, r.DayOfMonth)
	}

	start := dateOnly(r.Start)
	end := dateOnly(r.End)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidRule)
	}

	var dates []time.Time
	for k := 0; ; k++ {
		cursor := AddMonths(start, k*step)
		if cursor.After(end) {
			break
		}
		occ := Occurrence(cursor.Year(), cursor.Month(), r.DayOfMonth)
		if occ.Before(cursor) || occ.After(end) {
			continue
		}
		if len(dates) == MaxOccurrences {
			return nil, fmt.Errorf("%w: more than %d occurrences", ErrInvalidRule, MaxOccurrences)
		}
		dates = append(dates, occ)
	}
	return dates, nil
}

// AddMonths moves t forward by months calendar months, clamping the day to the
// target month's length instead of overflowing into the next month.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return Occurrence(first.Year(), first.Month(), t.Day())
}

// Occurrence returns day in the given month, clamped to the month's last day.
func Occurrence(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
