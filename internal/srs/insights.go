package srs

import (
	"math"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/maestro-drills/backend/internal/models"
)

// Difficulty levels inferred from review history.
const (
	LevelVeryEasy = "very_easy"
	LevelEasy     = "easy"
	LevelMedium   = "medium"
	LevelHard     = "hard"
	LevelVeryHard = "very_hard"
)

const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// WeakEaseFactor is the ease factor below which an exercise counts as weak.
const WeakEaseFactor = 2.3

// DetectLevel infers how hard an exercise is for the learner from its
// ease factor and current interval.
func DetectLevel(ex models.Exercise) string {
	ef, interval := ex.EaseFactor, ex.IntervalDays
	switch {
	case ef > 2.8 && interval > 30:
		return LevelVeryEasy
	case ef >= 2.5 && interval >= 10:
		return LevelEasy
	case ef >= 2.0 && interval >= 3:
		return LevelMedium
	case ef >= 1.5 && interval >= 1:
		return LevelHard
	default:
		return LevelVeryHard
	}
}

// Confidence grades how settled an exercise's schedule is.
func Confidence(ex models.Exercise) string {
	reps, ef := ex.Repetitions, ex.EaseFactor
	switch {
	case reps < 2 || ef < 1.8:
		return ConfidenceLow
	case reps >= 5 && ef >= WeakEaseFactor:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

// DaysOverdue is the number of days past the due date, 0 when not overdue.
func DaysOverdue(ex models.Exercise, today civil.Date) int {
	due, ok := DueDate(ex)
	if !ok || !due.Before(today) {
		return 0
	}
	return today.DaysSince(due)
}

func needsImprovement(ex models.Exercise, today civil.Date) bool {
	return ex.EaseFactor < 1.7 ||
		DaysOverdue(ex, today) > 5 ||
		(ex.Repetitions > 15 && ex.EaseFactor < 1.8)
}

// IsStruggling reports a low-ease or overdue exercise that also needs improvement.
func IsStruggling(ex models.Exercise, today civil.Date) bool {
	due, reviewed := DueDate(ex)
	weak := ex.EaseFactor < 1.7 ||
		(ex.Repetitions > 10 && ex.EaseFactor < 2.0) ||
		(reviewed && !due.After(today))
	return weak && needsImprovement(ex, today)
}

func IsMastered(ex models.Exercise) bool {
	return ex.EaseFactor > 2.8 && ex.Repetitions > 3 && ex.IntervalDays > 30
}

// NeedsPractice reports an exercise that is young or middling but not in trouble.
func NeedsPractice(ex models.Exercise, today civil.Date) bool {
	young := ex.Repetitions < 3 ||
		(ex.EaseFactor > 1.5 && ex.EaseFactor < 2.0) ||
		ex.LastReviewed == nil
	return young && !needsImprovement(ex, today)
}

// Insight builds the per-exercise summary used by Analyze.
func Insight(ex models.Exercise, today civil.Date) models.ExerciseInsight {
	return models.ExerciseInsight{
		ExerciseID:       ex.ID,
		Title:            ex.Title,
		Domain:           ex.Domain,
		Level:            DetectLevel(ex),
		EaseFactor:       ex.EaseFactor,
		IntervalDays:     ex.IntervalDays,
		Repetitions:      ex.Repetitions,
		Mastery:          ExerciseMastery(ex),
		DaysOverdue:      DaysOverdue(ex, today),
		NeedsImprovement: needsImprovement(ex, today),
		Confidence:       Confidence(ex),
	}
}

// Analyze sorts exercises into struggling, mastered, needs-practice and weak
// lists. Lists keep input order except Weak, which is ordered by ease factor
// ascending. An exercise may appear in more than one list.
func Analyze(exercises []models.Exercise, today civil.Date) models.Insights {
	out := models.Insights{
		Struggling:    []models.ExerciseInsight{},
		Mastered:      []models.ExerciseInsight{},
		NeedsPractice: []models.ExerciseInsight{},
		Weak:          []models.ExerciseInsight{},
	}
	for _, ex := range exercises {
		in := Insight(ex, today)
		if IsStruggling(ex, today) {
			out.Struggling = append(out.Struggling, in)
		}
		if IsMastered(ex) {
			out.Mastered = append(out.Mastered, in)
		}
		if NeedsPractice(ex, today) {
			out.NeedsPractice = append(out.NeedsPractice, in)
		}
		if ex.LastReviewed != nil && ex.EaseFactor < WeakEaseFactor {
			out.Weak = append(out.Weak, in)
		}
	}
	slices.SortStableFunc(out.Weak, func(a, b models.ExerciseInsight) int {
		switch {
		case a.EaseFactor < b.EaseFactor:
			return -1
		case a.EaseFactor > b.EaseFactor:
			return 1
		}
		return 0
	})
	return out
}

// RetentionRate is the percentage of passed reviews, 0 when there are none.
func RetentionRate(passed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(passed) * 100 / float64(total)))
}

// AverageEaseFactor is the mean ease factor of reviewed exercises rounded to
// two decimals, 0 when nothing has been reviewed.
func AverageEaseFactor(exercises []models.Exercise) float64 {
	sum, n := 0.0, 0
	for _, ex := range exercises {
		if ex.LastReviewed == nil {
			continue
		}
		sum += ex.EaseFactor
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*100) / 100
}
