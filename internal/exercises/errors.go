package exercises

import "errors"

var (
	ErrNotFound        = errors.New("exercise not found")
	ErrInvalidStep     = errors.New("step index out of range")
	ErrInvalidExercise = errors.New("invalid exercise")
)
