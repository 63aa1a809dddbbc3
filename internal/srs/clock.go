package srs

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the current calendar date. Every scheduling decision takes
// the date as a parameter; a Clock is only consulted at the edges.
type Clock interface {
	Today() civil.Date
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() civil.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(time.Now().In(loc))
}

// FixedClock always reports the same date.
type FixedClock struct {
	Date civil.Date
}

func (c FixedClock) Today() civil.Date {
	return c.Date
}
