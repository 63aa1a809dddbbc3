package srs

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/maestro-drills/backend/internal/models"
)

// DefaultRecommendLimit is the size of a recommended practice session.
const DefaultRecommendLimit = 3

// Candidates returns exercises that are unfinished or overdue, in input order.
func Candidates(exercises []models.Exercise, today civil.Date) []models.Exercise {
	candidates := make([]models.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if !ex.Completed || IsOverdue(ex, today) {
			candidates = append(candidates, ex)
		}
	}
	return candidates
}

// Recommended picks up to limit candidates, easiest first. Ties keep catalog
// order, so the same input always yields the same session. limit <= 0 uses
// DefaultRecommendLimit.
func Recommended(exercises []models.Exercise, today civil.Date, limit int) []models.Exercise {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	candidates := Candidates(exercises, today)
	slices.SortStableFunc(candidates, func(a, b models.Exercise) int {
		return cmp.Compare(a.Difficulty, b.Difficulty)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// Next returns the single exercise for a quick session: the first overdue
// one, else the first due today, else the first unfinished one.
// It returns nil when there is nothing left to do.
func Next(exercises []models.Exercise, today civil.Date) *models.Exercise {
	for _, match := range []func(models.Exercise) bool{
		func(ex models.Exercise) bool { return IsOverdue(ex, today) },
		func(ex models.Exercise) bool { return ex.Completed && IsDueToday(ex, today) },
		func(ex models.Exercise) bool { return !ex.Completed },
	} {
		for _, ex := range exercises {
			if match(ex) {
				next := ex
				return &next
			}
		}
	}
	return nil
}
