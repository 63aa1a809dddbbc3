package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Exercise is one practice unit of the catalog together with its review state.
type Exercise struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Domain      string   `json:"domain"`
	Difficulty  int      `json:"difficulty"`
	Steps       []string `json:"steps"`

	// Step progress, toggled by the user. Independent of the review state.
	CompletedSteps []int `json:"completed_steps"`
	SkippedCount   int   `json:"skipped_count"`

	// Review state
	Completed    bool        `json:"completed"`
	LastReviewed *civil.Date `json:"last_reviewed"`
	EaseFactor   float64     `json:"ease_factor"`
	IntervalDays int         `json:"interval_days"`
	Repetitions  int         `json:"repetitions"`

	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewLog is the snapshot of an exercise's review state right after a rating.
type ReviewLog struct {
	ID           int64      `json:"id"`
	ExerciseID   string     `json:"exercise_id"`
	Rating       int        `json:"rating"`
	ReviewedOn   civil.Date `json:"reviewed_on"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ── Derived Views ─────────────────────────────────────────

type DomainStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Mastery   int `json:"mastery"`
}

type Stats struct {
	TotalExercises    int                    `json:"total_exercises"`
	TotalCompleted    int                    `json:"total_completed"`
	TotalReviews      int                    `json:"total_reviews"`
	RetentionRate     int                    `json:"retention_rate"`
	AverageEaseFactor float64                `json:"average_ease_factor"`
	CurrentStreak     int                    `json:"current_streak"`
	LongestStreak     int                    `json:"longest_streak"`
	GlobalMastery     int                    `json:"global_mastery"`
	Domains           map[string]DomainStats `json:"domains"`
}

// ExerciseInsight is one exercise's entry in an Insights list.
type ExerciseInsight struct {
	ExerciseID       string  `json:"exercise_id"`
	Title            string  `json:"title"`
	Domain           string  `json:"domain"`
	Level            string  `json:"level"`
	EaseFactor       float64 `json:"ease_factor"`
	IntervalDays     int     `json:"interval_days"`
	Repetitions      int     `json:"repetitions"`
	Mastery          int     `json:"mastery"`
	DaysOverdue      int     `json:"days_overdue"`
	NeedsImprovement bool    `json:"needs_improvement"`
	Confidence       string  `json:"confidence"`
}

type Insights struct {
	Struggling    []ExerciseInsight `json:"struggling"`
	Mastered      []ExerciseInsight `json:"mastered"`
	NeedsPractice []ExerciseInsight `json:"needs_practice"`
	Weak          []ExerciseInsight `json:"weak"`
}

type DueDay struct {
	Date      civil.Date `json:"date"`
	Exercises []Exercise `json:"exercises"`
}

type DueSets struct {
	Overdue  []Exercise `json:"overdue"`
	Today    []Exercise `json:"today"`
	Upcoming []DueDay   `json:"upcoming"`
}

// ── API Request/Response Types ────────────────────────────

type RateRequest struct {
	Rating int `json:"rating"`
}

type RateResponse struct {
	Exercise     Exercise    `json:"exercise"`
	NextReview   *civil.Date `json:"next_review"`
	DaysUntilDue int         `json:"days_until_due"`
	DueLabel     string      `json:"due_label"`
	Stats        *Stats      `json:"stats,omitempty"`
}

type CreateExerciseRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Domain      string   `json:"domain"`
	Difficulty  int      `json:"difficulty"`
	Steps       []string `json:"steps"`
}

type NextResponse struct {
	Exercise *Exercise `json:"exercise"`
}
