package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want []time.Time
	}{
		{
			name: "monthly_first_of_month",
			rule: Rule{Start: date(2025, 1, 1), End: date(2025, 3, 31), Frequency: Monthly, DayOfMonth: 1},
			want: []time.Time{date(2025, 1, 1), date(2025, 2, 1), date(2025, 3, 1)},
		},
		{
			name: "day_31_clamps_without_drift",
			rule: Rule{Start: date(2025, 1, 1), End: date(2025, 5, 31), Frequency: Monthly, DayOfMonth: 31},
			want: []time.Time{date(2025, 1, 31), date(2025, 2, 28), date(2025, 3, 31), date(2025, 4, 30), date(2025, 5, 31)},
		},
		{
			name: "leap_february",
			rule: Rule{Start: date(2024, 2, 1), End: date(2024, 3, 1), Frequency: Monthly, DayOfMonth: 30},
			want: []time.Time{date(2024, 2, 29)},
		},
		{
			name: "day_before_cursor_day_never_matches",
			rule: Rule{Start: date(2025, 1, 15), End: date(2025, 3, 20), Frequency: Monthly, DayOfMonth: 10},
			want: nil,
		},
		{
			name: "stops_once_cursor_passes_end",
			rule: Rule{Start: date(2025, 1, 15), End: date(2025, 3, 10), Frequency: Monthly, DayOfMonth: 5},
			want: nil,
		},
		{
			name: "day_after_cursor_day_is_kept",
			rule: Rule{Start: date(2025, 1, 15), End: date(2025, 3, 20), Frequency: Monthly, DayOfMonth: 20},
			want: []time.Time{date(2025, 1, 20), date(2025, 2, 20), date(2025, 3, 20)},
		},
		{
			name: "month_end_cursor_does_not_drift",
			rule: Rule{Start: date(2025, 1, 31), End: date(2025, 4, 30), Frequency: Monthly, DayOfMonth: 31},
			want: []time.Time{date(2025, 1, 31), date(2025, 2, 28), date(2025, 3, 31), date(2025, 4, 30)},
		},
		{
			name: "occurrence_after_end_is_skipped",
			rule: Rule{Start: date(2025, 1, 1), End: date(2025, 3, 5), Frequency: Monthly, DayOfMonth: 10},
			want: []time.Time{date(2025, 1, 10), date(2025, 2, 10)},
		},
		{
			name: "quarterly",
			rule: Rule{Start: date(2025, 1, 1), End: date(2025, 12, 31), Frequency: Quarterly, DayOfMonth: 15},
			want: []time.Time{date(2025, 1, 15), date(2025, 4, 15), date(2025, 7, 15), date(2025, 10, 15)},
		},
		{
			name: "yearly_across_leap_day",
			rule: Rule{Start: date(2024, 2, 1), End: date(2027, 2, 28), Frequency: Yearly, DayOfMonth: 29},
			want: []time.Time{date(2024, 2, 29), date(2025, 2, 28), date(2026, 2, 28), date(2027, 2, 28)},
		},
		{
			name: "single_day_range",
			rule: Rule{Start: date(2025, 6, 5), End: date(2025, 6, 5), Frequency: Monthly, DayOfMonth: 5},
			want: []time.Time{date(2025, 6, 5)},
		},
		{
			name: "no_occurrence_in_range",
			rule: Rule{Start: date(2025, 6, 6), End: date(2025, 6, 30), Frequency: Monthly, DayOfMonth: 5},
			want: nil,
		},
		{
			name: "time_of_day_is_ignored",
			rule: Rule{Start: time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC), End: time.Date(2025, 2, 1, 1, 0, 0, 0, time.UTC), Frequency: Monthly, DayOfMonth: 1},
			want: []time.Time{date(2025, 1, 1), date(2025, 2, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.rule)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d occurrences, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("occurrence %d = %s, want %s", i, got[i].Format("2006-01-02"), tt.want[i].Format("2006-01-02"))
				}
			}
		})
	}
}

func TestExpand_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"unknown_frequency", Rule{Start: date(2025, 1, 1), End: date(2025, 2, 1), Frequency: "weekly", DayOfMonth: 1}},
		{"day_zero", Rule{Start: date(2025, 1, 1), End: date(2025, 2, 1), Frequency: Monthly, DayOfMonth: 0}},
		{"day_32", Rule{Start: date(2025, 1, 1), End: date(2025, 2, 1), Frequency: Monthly, DayOfMonth: 32}},
		{"end_before_start", Rule{Start: date(2025, 2, 1), End: date(2025, 1, 1), Frequency: Monthly, DayOfMonth: 1}},
		{"too_many_occurrences", Rule{Start: date(1900, 1, 1), End: date(2100, 1, 1), Frequency: Monthly, DayOfMonth: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(tt.rule)
			if !errors.Is(err, ErrInvalidRule) {
				t.Errorf("expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestStepMonths(t *testing.T) {
	for freq, want := range map[string]int{Monthly: 1, Quarterly: 3, Yearly: 12} {
		got, err := StepMonths(freq)
		if err != nil || got != want {
			t.Errorf("StepMonths(%q) = %d, %v; want %d", freq, got, err, want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from   time.Time
		months int
		want   time.Time
	}{
		{date(2025, 1, 15), 1, date(2025, 2, 15)},
		{date(2025, 1, 31), 1, date(2025, 2, 28)},
		{date(2025, 1, 31), 2, date(2025, 3, 31)},
		{date(2024, 2, 29), 12, date(2025, 2, 28)},
		{date(2025, 11, 30), 3, date(2026, 2, 28)},
	}
	for _, tt := range tests {
		if got := AddMonths(tt.from, tt.months); !got.Equal(tt.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.from.Format("2006-01-02"), tt.months,
				got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysIn(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
