package srs

import (
	"fmt"
	"math"
	"slices"

	"cloud.google.com/go/civil"

	"github.com/maestro-drills/backend/internal/models"
)

// Default settings for new exercises
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Rating is the user's assessment of how well an exercise went.
type Rating int

const (
	Again Rating = iota + 1 // Could not do it.
	Hard                    // Done with a lot of struggle.
	Good                    // Done with some effort.
	Easy                    // Done without hesitation.
)

var ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// ParseRating converts a raw rating into a Rating, rejecting anything outside 1-4.
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.IsValid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRating, v)
	}
	return r, nil
}

func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// Passed reports whether the rating counts as a successful recall.
func (r Rating) Passed() bool {
	return r >= Good
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// quality maps the 4-point rating onto the 0-5 SM-2 grade scale (Easy = 5).
func (r Rating) quality() float64 {
	return float64(r) + 1
}

// easeDelta is the SM-2 ease adjustment:
// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02))
func easeDelta(r Rating) float64 {
	miss := 5 - r.quality()
	return 0.1 - miss*(0.08+miss*0.02)
}

// ResetProgress returns ex with the default review state and no step progress.
func ResetProgress(ex models.Exercise) models.Exercise {
	ex.Completed = false
	ex.LastReviewed = nil
	ex.EaseFactor = DefaultEaseFactor
	ex.IntervalDays = 0
	ex.Repetitions = 0
	ex.CompletedSteps = []int{}
	return ex
}

// ApplyReview computes the review state of ex after a rating given on today.
// The input is not modified; the caller persists the returned exercise.
func ApplyReview(ex models.Exercise, rating Rating, today civil.Date) (models.Exercise, error) {
	if !rating.IsValid() {
		return ex, fmt.Errorf("%w: got %d", ErrInvalidRating, int(rating))
	}

	out := ex
	out.Steps = slices.Clone(ex.Steps)
	out.CompletedSteps = slices.Clone(ex.CompletedSteps)

	out.Repetitions++
	if rating.Passed() {
		switch out.Repetitions {
		case 1:
			out.IntervalDays = 1
		case 2:
			out.IntervalDays = 6
		default:
			out.IntervalDays = int(math.Round(float64(out.IntervalDays) * out.EaseFactor))
		}
	} else {
		out.Repetitions = 0
		out.IntervalDays = 1
	}

	// The ease update applies on failure too, then gets clamped.
	out.EaseFactor = math.Max(MinEaseFactor, out.EaseFactor+easeDelta(rating))

	reviewed := today
	out.LastReviewed = &reviewed

	if !out.Completed && len(out.CompletedSteps) == len(out.Steps) {
		out.Completed = true
	}

	return out, nil
}

// DueDate returns LastReviewed + IntervalDays. ok is false for exercises
// that were never reviewed.
func DueDate(ex models.Exercise) (due civil.Date, ok bool) {
	if ex.LastReviewed == nil {
		return civil.Date{}, false
	}
	return ex.LastReviewed.AddDays(ex.IntervalDays), true
}

// NewExercise returns a catalog entry with the default scheduling state.
func NewExercise(id, title, domain string, difficulty int, steps []string) models.Exercise {
	return ResetProgress(models.Exercise{
		ID:         id,
		Title:      title,
		Domain:     domain,
		Difficulty: difficulty,
		Steps:      steps,
	})
}
