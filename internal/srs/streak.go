package srs

import (
	"slices"

	"cloud.google.com/go/civil"
)

// CurrentStreak counts consecutive review days ending at the most recent
// review date. The streak is 0 unless that date is today or yesterday.
// Dates after today are ignored.
func CurrentStreak(reviewDates []civil.Date, today civil.Date) int {
	days := distinctDays(reviewDates)

	latest, found := civil.Date{}, false
	for d := range days {
		if d.After(today) {
			continue
		}
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	if !found || latest.Before(today.AddDays(-1)) {
		return 0
	}

	streak := 0
	for d := latest; days[d]; d = d.AddDays(-1) {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive review days ever recorded.
func LongestStreak(reviewDates []civil.Date) int {
	days := distinctDays(reviewDates)
	sorted := make([]civil.Date, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	slices.SortFunc(sorted, func(a, b civil.Date) int {
		return a.DaysSince(b)
	})

	longest, run := 0, 0
	for i, d := range sorted {
		if i > 0 && d.DaysSince(sorted[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func distinctDays(dates []civil.Date) map[civil.Date]bool {
	days := make(map[civil.Date]bool, len(dates))
	for _, d := range dates {
		days[d] = true
	}
	return days
}
