package srs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestro-drills/backend/internal/models"
)

func catalog() []models.Exercise {
	hard := NewExercise("hard", "hard", "architecture", 3, nil)
	mediumA := NewExercise("medium-a", "medium-a", "golang", 2, nil)
	easyDone := scheduled("easy-done", today, 6)
	easyOverdue := scheduled("easy-overdue", today.AddDays(-20), 6)
	easyOverdue.Difficulty = 1
	mediumB := NewExercise("medium-b", "medium-b", "linux", 2, nil)
	easyNew := NewExercise("easy-new", "easy-new", "linux", 1, nil)
	return []models.Exercise{hard, mediumA, easyDone, easyOverdue, mediumB, easyNew}
}

func TestRecommended_OrdersByDifficultyStable(t *testing.T) {
	got := Recommended(catalog(), today, 10)
	assert.Equal(t, []string{"easy-overdue", "easy-new", "medium-a", "medium-b", "hard"}, ids(got))
}

func TestRecommended_Limit(t *testing.T) {
	assert.Equal(t, []string{"easy-overdue", "easy-new", "medium-a"}, ids(Recommended(catalog(), today, 3)))
	assert.Len(t, Recommended(catalog(), today, 0), DefaultRecommendLimit)
	assert.Len(t, Recommended(catalog(), today, -4), DefaultRecommendLimit)
	assert.Empty(t, Recommended(nil, today, 3))
}

func TestRecommended_Idempotent(t *testing.T) {
	records := catalog()
	snapshot := catalog()

	first := Recommended(records, today, 3)
	second := Recommended(records, today, 3)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, records)
}

func TestNext(t *testing.T) {
	next := Next(catalog(), today)
	require.NotNil(t, next)
	assert.Equal(t, "easy-overdue", next.ID)

	dueToday := scheduled("due-today", today.AddDays(-6), 6)
	next = Next([]models.Exercise{NewExercise("open", "open", "x", 3, nil), dueToday}, today)
	require.NotNil(t, next)
	assert.Equal(t, "due-today", next.ID)

	next = Next([]models.Exercise{scheduled("done", today, 6), NewExercise("open", "open", "x", 3, nil)}, today)
	require.NotNil(t, next)
	assert.Equal(t, "open", next.ID)

	assert.Nil(t, Next([]models.Exercise{scheduled("done", today, 6)}, today))
	assert.Nil(t, Next(nil, today))
}
