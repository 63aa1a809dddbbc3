package srs

import (
	"fmt"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/maestro-drills/backend/internal/models"
)

// IsOverdue reports whether a completed exercise's due date is before today.
func IsOverdue(ex models.Exercise, today civil.Date) bool {
	if !ex.Completed {
		return false
	}
	due, ok := DueDate(ex)
	return ok && due.Before(today)
}

func IsDueToday(ex models.Exercise, today civil.Date) bool {
	due, ok := DueDate(ex)
	return ok && due == today
}

// IsNew reports whether the exercise has not been started at all.
func IsNew(ex models.Exercise) bool {
	return !ex.Completed && len(ex.CompletedSteps) == 0
}

// DaysUntilDue returns the number of days from today to the due date.
// Negative values mean overdue. ok is false for never-reviewed exercises.
func DaysUntilDue(ex models.Exercise, today civil.Date) (days int, ok bool) {
	due, ok := DueDate(ex)
	if !ok {
		return 0, false
	}
	return due.DaysSince(today), true
}

// DueLabel renders a DaysUntilDue value for display.
func DueLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == -1:
		return "Overdue by 1 day"
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// Upcoming groups exercises by due date for dates in (today, today+horizonDays].
// Exercises keep their input order within a date.
func Upcoming(exercises []models.Exercise, today civil.Date, horizonDays int) map[civil.Date][]models.Exercise {
	upcoming := make(map[civil.Date][]models.Exercise)
	if horizonDays <= 0 {
		return upcoming
	}
	last := today.AddDays(horizonDays)
	for _, ex := range exercises {
		due, ok := DueDate(ex)
		if !ok || !due.After(today) || due.After(last) {
			continue
		}
		upcoming[due] = append(upcoming[due], ex)
	}
	return upcoming
}

// DueSets classifies exercises into overdue, due today and upcoming.
func DueSets(exercises []models.Exercise, today civil.Date, horizonDays int) models.DueSets {
	sets := models.DueSets{
		Overdue:  []models.Exercise{},
		Today:    []models.Exercise{},
		Upcoming: []models.DueDay{},
	}
	for _, ex := range exercises {
		switch {
		case IsOverdue(ex, today):
			sets.Overdue = append(sets.Overdue, ex)
		case IsDueToday(ex, today):
			sets.Today = append(sets.Today, ex)
		}
	}

	byDate := Upcoming(exercises, today, horizonDays)
	dates := make([]civil.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b civil.Date) int {
		return a.DaysSince(b)
	})
	for _, d := range dates {
		sets.Upcoming = append(sets.Upcoming, models.DueDay{Date: d, Exercises: byDate[d]})
	}
	return sets
}
