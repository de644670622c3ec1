package service

import (
	"sort"

	"workoutbuddy/server/internal/domain"
)

// Pure aggregation helpers derived from the workout ledger. Everything here
// is computed per request; nothing owns persistent state.

// GroupWorkoutsByDay buckets workouts by their calendar date, keyed by the
// "YYYY-MM-DD" string. Multiple entries on the same day are preserved as a
// list in their incoming order, not collapsed.
func GroupWorkoutsByDay(workouts []domain.Workout) map[string][]domain.Workout {
	buckets := make(map[string][]domain.Workout)
	for _, w := range workouts {
		key := w.Date.String()
		buckets[key] = append(buckets[key], w)
	}
	return buckets
}

// CurrentStreak computes the number of consecutive calendar days with at
// least one workout, ending at today or yesterday. A streak that does not
// reach the present window counts as 0, no matter how long the run is: two
// consecutive days ending three days ago are a broken streak, not a streak
// of two.
func CurrentStreak(dates []domain.CalendarDate, today domain.CalendarDate) int {
	if len(dates) == 0 {
		return 0
	}

	seen := make(map[domain.CalendarDate]bool, len(dates))
	distinct := make([]domain.CalendarDate, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			distinct = append(distinct, d)
		}
	}
	// Most recent day first.
	sort.Slice(distinct, func(i, j int) bool {
		return distinct[j].Before(distinct[i])
	})

	yesterday := today.AddDays(-1)
	mostRecent := distinct[0]
	if mostRecent.Before(yesterday) {
		return 0
	}

	streak := 1
	expected := mostRecent
	for _, d := range distinct[1:] {
		prev := expected.AddDays(-1)
		if !d.Equal(prev) {
			break
		}
		streak++
		expected = prev
	}
	return streak
}

// TotalDurationMinutes sums logged durations across a workout set,
// normalizing an "hours" unit to minutes. Entries without a duration
// contribute nothing.
func TotalDurationMinutes(workouts []domain.Workout) float64 {
	var total float64
	for i := range workouts {
		total += workouts[i].DurationMinutes()
	}
	return total
}

// Leaderboard period filters.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

// periodCutoff resolves a leaderboard period to the earliest calendar date
// it includes, or nil for an unbounded window. Unknown values fall back to
// the week window, the default period.
func periodCutoff(period string, today domain.CalendarDate) *domain.CalendarDate {
	switch period {
	case PeriodAll:
		return nil
	case PeriodMonth:
		cutoff := today.AddDays(-30)
		return &cutoff
	default:
		cutoff := today.AddDays(-7)
		return &cutoff
	}
}
