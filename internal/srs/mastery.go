package srs

import (
	"math"

	"github.com/maestro-drills/backend/internal/models"
)

// MasteryCeiling is the ease factor that maps to 100% mastery.
const MasteryCeiling = 3.0

// ExerciseMastery converts the ease factor into a 0-100 score.
// Exercises that are not completed or never reviewed score 0.
func ExerciseMastery(ex models.Exercise) int {
	if !ex.Completed || ex.LastReviewed == nil {
		return 0
	}
	ratio := (ex.EaseFactor - MinEaseFactor) / (MasteryCeiling - MinEaseFactor)
	ratio = math.Max(0, math.Min(1, ratio))
	return int(math.Round(ratio * 100))
}

// DomainMastery is the best mastery among the completed exercises given.
// It is a max, not an average: one strong result is not diluted by the rest.
func DomainMastery(exercises []models.Exercise) int {
	best := 0
	for _, ex := range exercises {
		if !ex.Completed {
			continue
		}
		if m := ExerciseMastery(ex); m > best {
			best = m
		}
	}
	return best
}

// GlobalMastery is the rounded mean mastery over completed exercises, 0 when
// none are completed.
func GlobalMastery(exercises []models.Exercise) int {
	sum, n := 0, 0
	for _, ex := range exercises {
		if !ex.Completed {
			continue
		}
		sum += ExerciseMastery(ex)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// DomainStats groups exercises by domain and computes completion and
// mastery for each.
func DomainStats(exercises []models.Exercise) map[string]models.DomainStats {
	byDomain := make(map[string][]models.Exercise)
	for _, ex := range exercises {
		byDomain[ex.Domain] = append(byDomain[ex.Domain], ex)
	}

	stats := make(map[string]models.DomainStats, len(byDomain))
	for domain, list := range byDomain {
		ds := models.DomainStats{Total: len(list), Mastery: DomainMastery(list)}
		for _, ex := range list {
			if ex.Completed {
				ds.Completed++
			}
		}
		stats[domain] = ds
	}
	return stats
}
