package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maestro-drills/backend/internal/models"
)

func reviewed(domain string, ease float64) models.Exercise {
	ex := NewExercise(domain+"-ex", "t", domain, 1, nil)
	d := today
	ex.LastReviewed = &d
	ex.Completed = true
	ex.EaseFactor = ease
	return ex
}

func TestExerciseMastery(t *testing.T) {
	tests := []struct {
		ease float64
		want int
	}{
		{1.3, 0},
		{2.15, 50},
		{2.5, 71},
		{2.6, 76},
		{3.0, 100},
		{3.4, 100},
	}

	for _, tt := range tests {
		got := ExerciseMastery(reviewed("linux", tt.ease))
		if got != tt.want {
			t.Errorf("ExerciseMastery(ease=%.2f) = %d, want %d", tt.ease, got, tt.want)
		}
	}
}

func TestExerciseMastery_ZeroBaseline(t *testing.T) {
	notCompleted := reviewed("linux", 3.0)
	notCompleted.Completed = false
	assert.Zero(t, ExerciseMastery(notCompleted))

	neverReviewed := reviewed("linux", 3.0)
	neverReviewed.LastReviewed = nil
	assert.Zero(t, ExerciseMastery(neverReviewed))
}

func TestDomainMastery_TakesBest(t *testing.T) {
	weak := reviewed("golang", 1.3)
	strong := reviewed("golang", 3.0)
	open := NewExercise("open", "t", "golang", 1, nil)

	assert.Equal(t, 100, DomainMastery([]models.Exercise{weak, strong, open}))
	assert.Zero(t, DomainMastery([]models.Exercise{open}))
	assert.Zero(t, DomainMastery(nil))
}

func TestGlobalMastery(t *testing.T) {
	assert.Zero(t, GlobalMastery(nil))
	assert.Zero(t, GlobalMastery([]models.Exercise{NewExercise("a", "t", "x", 1, nil)}))

	got := GlobalMastery([]models.Exercise{
		reviewed("golang", 1.3),
		reviewed("linux", 3.0),
		reviewed("linux", 2.15),
		NewExercise("open", "t", "linux", 1, nil),
	})
	assert.Equal(t, 50, got)
}

func TestDomainStats(t *testing.T) {
	stats := DomainStats([]models.Exercise{
		reviewed("golang", 2.15),
		NewExercise("g2", "t", "golang", 2, nil),
		NewExercise("l1", "t", "linux", 1, nil),
	})

	assert.Equal(t, map[string]models.DomainStats{
		"golang": {Completed: 1, Total: 2, Mastery: 50},
		"linux":  {Completed: 0, Total: 1, Mastery: 0},
	}, stats)
}
