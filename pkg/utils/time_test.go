package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 10, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestDatesEqual(t *testing.T) {
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, DatesEqual(morning, evening))
	assert.False(t, DatesEqual(evening, nextDay))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 1, DaysBetween(a, a.AddDate(0, 0, 1)))
	assert.Equal(t, 7, DaysBetween(a.Add(5*time.Hour), a.AddDate(0, 0, 7)))
	assert.Equal(t, -1, DaysBetween(a, a.AddDate(0, 0, -1)))
}
