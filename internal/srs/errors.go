package srs

import "errors"

// ErrInvalidRating is returned for ratings outside 1-4.
// Use errors.Is to check.
var ErrInvalidRating = errors.New("rating must be between 1 and 4")
