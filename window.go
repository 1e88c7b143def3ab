// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rawbin

import (
	"fmt"
	"math"
)

const (
	// MinDuration is the shortest window offered to the user, in samples.
	MinDuration = 100
	// DefaultDuration is the initial window length, in samples.
	DefaultDuration = 10000
)

// Resolve returns the window of exactly duration samples centered as
// closely as possible on centerSeconds.
//
// A window that would cross either end of the recording is shifted back
// inside it rather than shortened, so the result is not necessarily
// centered on the requested time. Only one side is ever corrected. A
// duration longer than the recording is an error.
func Resolve(centerSeconds float64, duration uint64, rateHz float64, sampleCount uint64) (Window, error) {
	if duration == 0 {
		return Window{}, fmt.Errorf("%w: zero window duration", ErrRange)
	}
	if duration > sampleCount {
		return Window{}, fmt.Errorf("%w: window of %d samples exceeds recording of %d samples",
			ErrRange, duration, sampleCount)
	}
	if !(rateHz > 0) || math.IsInf(rateHz, 0) {
		return Window{}, fmt.Errorf("%w: invalid sampling rate %v", ErrRange, rateHz)
	}
	if math.IsNaN(centerSeconds) {
		return Window{}, fmt.Errorf("%w: center time is NaN", ErrRange)
	}

	// Pinning the center to [0, sampleCount] first keeps the arithmetic in
	// range without changing which side gets clamped.
	var center uint64
	switch c := math.Round(centerSeconds * rateHz); {
	case c <= 0:
		center = 0
	case c >= float64(sampleCount):
		center = sampleCount
	default:
		center = uint64(c)
	}

	half := duration / 2
	if center < half {
		return Window{Start: 0, End: duration}, nil
	}

	start := center - half
	if start > sampleCount-duration {
		start = sampleCount - duration
	}

	return Window{Start: start, End: start + duration}, nil
}

// Bounds are the limits a caller should keep user input within.
type Bounds struct {
	MaxCenterSeconds float64
	MinDuration      uint64
	MaxDuration      uint64
}

// NewBounds returns the input bounds for a recording of sampleCount samples
// acquired at rateHz.
func NewBounds(sampleCount uint64, rateHz float64) Bounds {
	return Bounds{
		MaxCenterSeconds: float64(sampleCount) / rateHz,
		MinDuration:      min(MinDuration, sampleCount),
		MaxDuration:      sampleCount,
	}
}

// CheckCenter reports whether centerSeconds lies in [0, MaxCenterSeconds].
func (b Bounds) CheckCenter(centerSeconds float64) error {
	if !(centerSeconds >= 0 && centerSeconds <= b.MaxCenterSeconds) {
		return fmt.Errorf("%w: center time must be between 0 and %.2f seconds", ErrRange, b.MaxCenterSeconds)
	}
	return nil
}

// CheckDuration reports whether duration lies in [MinDuration, MaxDuration].
func (b Bounds) CheckDuration(duration uint64) error {
	if duration < b.MinDuration || duration > b.MaxDuration {
		return fmt.Errorf("%w: duration must be between %d and %d samples", ErrRange, b.MinDuration, b.MaxDuration)
	}
	return nil
}
