// Package srs implements the SM-2 spaced-repetition scheduling algorithm.
package srs

import (
	"math"
	"time"
)

const (
	// DefaultEaseFactor is the starting ease for a card that has never
	// been reviewed.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	// MaxIntervalDays caps the review interval at one year.
	MaxIntervalDays = 365

	// PassThreshold is the lowest quality rating counted as a successful
	// recall. Ratings below it reset the repetition ladder.
	PassThreshold = 3

	MinQuality = 0
	MaxQuality = 5
)

// State is the scheduling state of a single card.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// DefaultState returns the scheduling state of a never-reviewed card.
func DefaultState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// normalized fills in defaults for a zero-valued state so that rows predating
// the scheduling columns behave like new cards.
func (s State) normalized() State {
	if s.EaseFactor == 0 {
		s.EaseFactor = DefaultEaseFactor
	}
	if s.IntervalDays < 0 {
		s.IntervalDays = 0
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	return s
}

// ValidQuality reports whether q is a legal rating. Range checking belongs to
// the caller; Schedule accepts any integer and treats everything below
// PassThreshold as a failure.
func ValidQuality(q int) bool {
	return q >= MinQuality && q <= MaxQuality
}

// Schedule applies one review with the given quality rating and returns the
// next scheduling state together with the next review time.
//
// quality < 3 resets repetitions to 0 and the interval to 1 day without
// touching the ease factor. On a pass the interval follows the SM-2 ladder
// (1, 6, then interval*EF) and the ease factor is adjusted by
// 0.1 - (5-q)*(0.08 + (5-q)*0.02), floored at 1.3.
//
// interval*EF uses round-half-up: the interval sequence must be identical
// across runs and platforms, so the rounding rule is pinned here rather than
// left to the platform default.
func Schedule(s State, quality int, now time.Time) (State, time.Time) {
	s = s.normalized()

	if quality < PassThreshold {
		s.Repetitions = 0
		s.IntervalDays = 1
	} else {
		switch s.Repetitions {
		case 0:
			s.IntervalDays = 1
		case 1:
			s.IntervalDays = 6
		default:
			s.IntervalDays = roundHalfUp(float64(s.IntervalDays) * s.EaseFactor)
		}

		q := float64(quality)
		s.EaseFactor += 0.1 - (5-q)*(0.08+(5-q)*0.02)
		if s.EaseFactor < MinEaseFactor {
			s.EaseFactor = MinEaseFactor
		}
		s.Repetitions++
	}

	if s.IntervalDays > MaxIntervalDays {
		s.IntervalDays = MaxIntervalDays
	}

	return s, now.AddDate(0, 0, s.IntervalDays)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
